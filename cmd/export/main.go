// export dumps all collected answers from the database into an Excel
// workbook for analysis.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/JiarongF/StatsLearning/adapters/excel"
	"github.com/JiarongF/StatsLearning/adapters/postgres"
)

func main() {
	out := flag.String("out", "answers.xlsx", "output workbook path")
	flag.Parse()

	_ = godotenv.Load()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	exporter := excel.NewAnswerExporter(postgres.NewAnswerRepository(db))
	if err := exporter.Export(ctx, *out); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	log.Printf("Answers exported to %s", *out)
}
