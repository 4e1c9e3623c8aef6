package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"hostelfix/backend/internal/auth"
	"hostelfix/backend/internal/bootstrap"
	"hostelfix/backend/internal/complaint"
	"hostelfix/backend/internal/config"
	"hostelfix/backend/internal/logging"
	"hostelfix/backend/internal/models"
)

const usage = `Usage: admin <command> [args]

Commands:
  create-admin <name> <email> <password> <hostelCode> <hostelName>
  seed-demo
  list-students <hostelCode>
  stats <hostelCode>`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, _, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(logging.Config{Level: "warn", Format: cfg.Log.Format, Output: os.Stderr})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer store.Close()

	authSvc := auth.NewService(store, auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL), auth.BcryptHasher{}, nil, logger)
	complaintSvc := complaint.NewService(store, store, nil, complaint.Options{}, logger)

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "create-admin":
		if len(args) != 5 {
			fmt.Println("Usage: admin create-admin <name> <email> <password> <hostelCode> <hostelName>")
			os.Exit(1)
		}
		user, err := authSvc.CreateAccount(ctx, auth.RegisterInput{
			Name:       args[0],
			Email:      args[1],
			Password:   args[2],
			HostelCode: args[3],
			HostelName: args[4],
		}, models.RoleAdmin)
		if err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
		fmt.Printf("Admin %s (%s) created for hostel %s.\n", user.Email, user.ID, user.HostelCode)

	case "seed-demo":
		created, err := authSvc.SeedDemo(ctx)
		if err != nil {
			log.Fatalf("Error seeding demo users: %v", err)
		}
		fmt.Printf("Demo users created: %d.\n", created)

	case "list-students":
		if len(args) != 1 {
			fmt.Println("Usage: admin list-students <hostelCode>")
			os.Exit(1)
		}
		users, err := authSvc.ListStudents(ctx, &auth.Identity{HostelCode: models.NormalizeHostelCode(args[0])})
		if err != nil {
			log.Fatalf("Error listing students: %v", err)
		}
		printStudents(users)

	case "stats":
		if len(args) != 1 {
			fmt.Println("Usage: admin stats <hostelCode>")
			os.Exit(1)
		}
		stats, err := complaintSvc.Statistics(ctx, args[0])
		if err != nil {
			log.Fatalf("Error reading statistics: %v", err)
		}
		fmt.Printf("total: %d\npending: %d\nin progress: %d\nresolved: %d\n",
			stats.Total, stats.Pending, stats.InProgress, stats.Resolved)

	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func printStudents(users []models.User) {
	if len(users) == 0 {
		fmt.Println("No students found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tREGISTERED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.CreatedAt.Format(time.DateOnly))
	}
	w.Flush()
}
