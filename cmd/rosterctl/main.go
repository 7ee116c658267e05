package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/atenjiha/MAHSA-LEARN/internal/rosterclient"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: rosterctl [flags] import <file.csv> | export [file.csv]\n")
	flag.PrintDefaults()
}

func main() {
	baseURL := flag.String("url", getenv("MAHSA_URL", "http://127.0.0.1:5001"), "MAHSA API base URL")
	staffID := flag.String("id", getenv("MAHSA_STAFF_ID", "admin"), "educator staff id")
	pin := flag.String("pin", os.Getenv("MAHSA_PIN"), "educator PIN")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	client := rosterclient.New(*baseURL, *timeout)
	if err := client.Login(ctx, *staffID, *pin); err != nil {
		log.Fatalf("login failed: %v", err)
	}

	switch args[0] {
	case "import":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		file, err := os.Open(args[1])
		if err != nil {
			log.Fatalf("open roster: %v", err)
		}
		defer file.Close()
		summary, err := client.Import(ctx, file)
		if err != nil {
			log.Fatalf("import failed: %v", err)
		}
		log.Printf("imported roster: %d created, %d updated, %d skipped", summary.Created, summary.Updated, summary.Skipped)
	case "export":
		out := os.Stdout
		if len(args) == 2 {
			file, err := os.Create(args[1])
			if err != nil {
				log.Fatalf("create output: %v", err)
			}
			defer file.Close()
			out = file
		}
		if err := client.Export(ctx, out); err != nil {
			log.Fatalf("export failed: %v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
