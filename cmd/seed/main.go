// seed provisions exam rooms for local testing. Idempotent: creating a room
// that already exists is a no-op.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/Divyam-11/ExamJudge/internal/config"
	"github.com/Divyam-11/ExamJudge/internal/db"
	roomrepo "github.com/Divyam-11/ExamJudge/internal/room/repository"
)

func main() {
	roomsFlag := flag.String("rooms", "exam-101,exam-102", "Comma-separated room ids to create")
	owner := flag.String("owner", "proctor@example.com", "Owner recorded for the created rooms")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	repo := roomrepo.NewPostgresRepository(conn)
	ctx := context.Background()
	for _, id := range strings.Split(*roomsFlag, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := repo.Create(ctx, id, *owner); err != nil {
			log.Fatalf("create room %s: %v", id, err)
		}
		log.Printf("seed: room %s ready", id)
	}
}
