package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/jam-build-rentals/internal/testhelpers"
)

func main() {
	var showHelp, withService bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.BoolVar(&withService, "s", false, "also run the service image, if it has been built")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run the rentals development stack (database and Authorizer) with the
environment variables from the .env file. Stops on SIGINT or SIGTERM.

Usage:

testcontainers [-h] [-s] [-f ENV_FILE_PATH]

-s: also run RENTALS_IMAGE (default jam-build-rentals:latest) when it exists
ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	stack, err := testhelpers.StartStack(ctx, nil, testhelpers.StackOptions{
		Authorizer: true,
		Rentals:    withService,
	})
	if err != nil {
		log.Fatalf("Failed to create test containers: %v\n", err)
	}

	cfg, err := stack.DBConfig(ctx)
	if err == nil {
		log.Printf("DB_TYPE=%s DB_HOST=%s DB_PORT=%s\n", cfg.DBType, cfg.DBHost, cfg.DBPort)
	}

	<-ctx.Done()
	log.Printf("\nReceived signal, terminating test containers...\n")
	stack.Terminate(nil)
	os.Exit(0)
}
