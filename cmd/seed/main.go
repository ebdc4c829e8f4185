package main

import (
	"fmt"
	"log"
	"time"

	"cinebook/internal/catalog"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Cinebook Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Ready for bookings.")
}

// CleanDatabase truncates all tables in dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{"payments", "booking_seats", "bookings", "showings", "seats", "halls", "prices"}
	for _, table := range tables {
		if err := s.db.PostgreSQL.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	halls, err := s.seedHalls()
	if err != nil {
		return err
	}
	if err := s.seedPrices(); err != nil {
		return err
	}
	return s.seedShowings(halls)
}

// seedHalls builds two demo halls. Hall 1 has a back row of wide seats
// (each one pair of halves) plus accessible seats at the front edge.
func (s *Seeder) seedHalls() ([]catalog.Hall, error) {
	hallOne := catalog.Hall{ID: uuid.New(), Name: "Hall 1"}
	var seats []catalog.Seat

	// Rows 1-5: standard 8-seat rows; the first row keeps two accessible
	// seats at the aisle positions.
	for row := 1; row <= 5; row++ {
		for col := 1; col <= 8; col++ {
			kind := catalog.SeatKindNormal
			if row == 1 && (col == 1 || col == 8) {
				kind = catalog.SeatKindAccessible
			}
			seats = append(seats, catalog.Seat{
				ID:     uuid.New(),
				HallID: hallOne.ID,
				Row:    row,
				Column: col,
				Number: col,
				Kind:   kind,
			})
		}
	}

	// Row 6: four wide "loveseats", each sold as a left/right half pair.
	number := 1
	for col := 1; col <= 8; col += 2 {
		seats = append(seats,
			catalog.Seat{
				ID: uuid.New(), HallID: hallOne.ID,
				Row: 6, Column: col, Number: number,
				Kind: catalog.SeatKindWideLeftHalf,
			},
			catalog.Seat{
				ID: uuid.New(), HallID: hallOne.ID,
				Row: 6, Column: col + 1, Number: number + 1,
				Kind: catalog.SeatKindWideRightHalf,
			},
		)
		number += 2
	}

	if err := catalog.ResolveWidePairs(seats); err != nil {
		return nil, fmt.Errorf("failed to resolve wide pairs: %w", err)
	}

	hallTwo := catalog.Hall{ID: uuid.New(), Name: "Hall 2"}
	for row := 1; row <= 4; row++ {
		for col := 1; col <= 6; col++ {
			seats = append(seats, catalog.Seat{
				ID:     uuid.New(),
				HallID: hallTwo.ID,
				Row:    row,
				Column: col,
				Number: col,
				Kind:   catalog.SeatKindNormal,
			})
		}
	}

	halls := []catalog.Hall{hallOne, hallTwo}
	if err := s.db.PostgreSQL.Create(&halls).Error; err != nil {
		return nil, fmt.Errorf("failed to create halls: %w", err)
	}
	if err := s.db.PostgreSQL.Create(&seats).Error; err != nil {
		return nil, fmt.Errorf("failed to create seats: %w", err)
	}

	fmt.Printf("   Created %d halls with %d seats\n", len(halls), len(seats))
	return halls, nil
}

func (s *Seeder) seedPrices() error {
	prices := []catalog.Price{
		{ID: uuid.New(), TicketType: catalog.TicketTypeNormal, BasePrice: 30.00, MinPrice: 20.00, MaxPrice: 40.00},
		{ID: uuid.New(), TicketType: catalog.TicketTypeReduced, BasePrice: 22.50, MinPrice: 15.00, MaxPrice: 30.00},
	}
	if err := s.db.PostgreSQL.Create(&prices).Error; err != nil {
		return fmt.Errorf("failed to create prices: %w", err)
	}
	fmt.Printf("   Created %d price bands\n", len(prices))
	return nil
}

func (s *Seeder) seedShowings(halls []catalog.Hall) error {
	movies := []struct {
		title     string
		runtime   time.Duration
		format    string
		language  string
		subtitles string
	}{
		{"The Long Night", 2*time.Hour + 15*time.Minute, "IMAX", "EN", ""},
		{"Paper Boats", 1*time.Hour + 50*time.Minute, "2D", "FR", "EN"},
		{"Starfall", 2*time.Hour + 5*time.Minute, "3D", "EN", ""},
	}

	var showings []catalog.Showing
	base := time.Now().UTC().Truncate(time.Hour).Add(6 * time.Hour)
	for day := 0; day < 7; day++ {
		for i, movie := range movies {
			start := base.AddDate(0, 0, day).Add(time.Duration(i*3) * time.Hour)
			showings = append(showings, catalog.Showing{
				ID:         uuid.New(),
				HallID:     halls[i%len(halls)].ID,
				MovieID:    uuid.New(),
				MovieTitle: movie.title,
				StartTime:  start,
				EndTime:    start.Add(movie.runtime),
				Format:     movie.format,
				Language:   movie.language,
				Subtitles:  movie.subtitles,
			})
		}
	}

	if err := s.db.PostgreSQL.Create(&showings).Error; err != nil {
		return fmt.Errorf("failed to create showings: %w", err)
	}
	fmt.Printf("   Created %d showings over the next week\n", len(showings))
	return nil
}
