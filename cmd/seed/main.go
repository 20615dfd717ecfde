package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ProRenterv1/Renter-sub002/internal/bookings"
	"github.com/ProRenterv1/Renter-sub002/internal/disputes"
	"github.com/ProRenterv1/Renter-sub002/internal/listings"
	"github.com/ProRenterv1/Renter-sub002/internal/payments"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/database"
	"github.com/ProRenterv1/Renter-sub002/internal/users"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting ProRenter database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.GetPostgreSQL()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"dispute_resolutions",
		"dispute_evidence",
		"dispute_messages",
		"dispute_cases",
		"refunds",
		"deposit_holds",
		"payments",
		"bookings",
		"listing_photos",
		"listings",
		"users",
	}

	gormDB := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := gormDB.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	seededUsers, err := s.seedUsers()
	if err != nil {
		return err
	}

	seededListings, err := s.seedListings(seededUsers)
	if err != nil {
		return err
	}

	return s.seedBookingsAndDispute(seededUsers, seededListings)
}

func (s *Seeder) seedUsers() (map[string]*users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	records := []users.User{
		{FirstName: "Rhea", LastName: "Naik", Email: "renter@prorenter.dev", Role: users.RoleUser, Verified: true},
		{FirstName: "Owen", LastName: "Birch", Email: "owner@prorenter.dev", Role: users.RoleUser, Verified: true},
		{FirstName: "Olga", LastName: "Petrov", Email: "operator@prorenter.dev", Role: users.RoleOperator, Verified: true},
		{FirstName: "Farah", LastName: "Idris", Email: "finance@prorenter.dev", Role: users.RoleFinance, Verified: true},
		{FirstName: "Ada", LastName: "Kümmel", Email: "admin@prorenter.dev", Role: users.RoleAdmin, Verified: true},
	}

	gormDB := s.db.GetPostgreSQL()
	out := make(map[string]*users.User, len(records))
	for i := range records {
		records[i].ID = uuid.New()
		records[i].Password = string(hash)
		if err := gormDB.Create(&records[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", records[i].Email, err)
		}
		out[string(records[i].Role)+":"+records[i].Email] = &records[i]
	}

	fmt.Printf("  seeded %d users (password: password123)\n", len(records))
	out["renter"] = &records[0]
	out["owner"] = &records[1]
	return out, nil
}

func (s *Seeder) seedListings(seededUsers map[string]*users.User) ([]listings.Listing, error) {
	owner := seededUsers["owner"]

	records := []listings.Listing{
		{
			OwnerID:         owner.ID,
			Title:           "Makita cordless drill",
			Description:     "18V brushless drill with two batteries and a charger. Ideal for deck work.",
			Category:        "power_tools",
			City:            "Portland",
			DailyPriceCents: 1500,
			DepositCents:    10000,
			Status:          listings.StatusActive,
		},
		{
			OwnerID:         owner.ID,
			Title:           "Honda pressure washer",
			Description:     "3100 PSI gas pressure washer. Hose and three nozzles included.",
			Category:        "outdoor",
			City:            "Portland",
			DailyPriceCents: 4000,
			DepositCents:    25000,
			Status:          listings.StatusActive,
		},
		{
			OwnerID:         owner.ID,
			Title:           "Bosch laser level",
			Description:     "Self-leveling cross-line laser. Comes in hard case with mount.",
			Category:        "measuring",
			City:            "Salem",
			DailyPriceCents: 1200,
			DepositCents:    8000,
			Status:          listings.StatusActive,
		},
	}

	gormDB := s.db.GetPostgreSQL()
	for i := range records {
		records[i].ID = uuid.New()
		if err := gormDB.Create(&records[i]).Error; err != nil {
			return nil, fmt.Errorf("failed to seed listing %q: %w", records[i].Title, err)
		}
	}

	fmt.Printf("  seeded %d listings\n", len(records))
	return records, nil
}

func (s *Seeder) seedBookingsAndDispute(seededUsers map[string]*users.User, seededListings []listings.Listing) error {
	renter := seededUsers["renter"]
	owner := seededUsers["owner"]
	drill := seededListings[0]

	gormDB := s.db.GetPostgreSQL()

	start := time.Now().AddDate(0, 0, -10)
	end := start.AddDate(0, 0, 2)

	booking := bookings.Booking{
		ID:               uuid.New(),
		ListingID:        drill.ID,
		RenterID:         renter.ID,
		OwnerID:          owner.ID,
		StartDate:        start,
		EndDate:          end,
		Status:           bookings.StatusPaid,
		TotalCents:       2 * drill.DailyPriceCents,
		DepositHoldCents: drill.DepositCents,
	}
	if err := gormDB.Create(&booking).Error; err != nil {
		return fmt.Errorf("failed to seed booking: %w", err)
	}

	payment := payments.Payment{
		ID:          uuid.New(),
		BookingID:   booking.ID,
		PayerID:     renter.ID,
		AmountCents: booking.TotalCents,
		Status:      payments.PaymentSucceeded,
		Provider:    "sandbox",
	}
	if err := gormDB.Create(&payment).Error; err != nil {
		return fmt.Errorf("failed to seed payment: %w", err)
	}

	hold := payments.DepositHold{
		ID:          uuid.New(),
		BookingID:   booking.ID,
		AmountCents: booking.DepositHoldCents,
		Status:      payments.HoldHeld,
	}
	if err := gormDB.Create(&hold).Error; err != nil {
		return fmt.Errorf("failed to seed deposit hold: %w", err)
	}

	dispute := disputes.DisputeCase{
		ID:             uuid.New(),
		BookingID:      booking.ID,
		OpenedBy:       renter.ID,
		OpenedByRole:   disputes.RoleRenter,
		Category:       disputes.CategoryDamage,
		DamageFlowKind: disputes.DamageFlowGeneric,
		Description:    "The chuck is cracked and the drill no longer holds a bit straight.",
		Status:         disputes.StatusOpen,
		ListingTitle:   drill.Title,
	}
	if err := gormDB.Create(&dispute).Error; err != nil {
		return fmt.Errorf("failed to seed dispute: %w", err)
	}

	message := disputes.DisputeMessage{
		ID:        uuid.New(),
		DisputeID: dispute.ID,
		Role:      disputes.RoleSystem,
		Text:      "Dispute opened by renter: damage",
	}
	if err := gormDB.Create(&message).Error; err != nil {
		return fmt.Errorf("failed to seed dispute message: %w", err)
	}

	fmt.Println("  seeded 1 paid booking with deposit hold and 1 open dispute")
	return nil
}
