package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/theoremus-urban-solutions/siri-journey-planner/config"
	"github.com/theoremus-urban-solutions/siri-journey-planner/internal/logging"
	"github.com/theoremus-urban-solutions/siri-journey-planner/planner"
	"github.com/theoremus-urban-solutions/siri-journey-planner/server"
	"github.com/theoremus-urban-solutions/siri-journey-planner/siri"
	"github.com/theoremus-urban-solutions/siri-journey-planner/storage"
	"github.com/theoremus-urban-solutions/siri-journey-planner/vehicles"
)

const vehicleRefreshInterval = 30 * time.Second

func main() {
	mode := flag.String("mode", "serve", "serve|route")
	configPath := flag.String("config", "", "path to config.yml")
	origin := flag.String("origin", "", "origin as lat,lng (route mode)")
	dest := flag.String("dest", "", "destination as lat,lng (route mode)")
	depart := flag.String("depart", "", "departure time, RFC 3339 (route mode, default now)")
	flag.Parse()

	_ = godotenv.Load()
	logging.Init()

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := siri.NewClient(cfg.SIRI)
	session := planner.NewSession(client, cfg.Planner)

	switch *mode {
	case "serve":
		runServer(cfg, client, session)
	case "route":
		runRoute(cfg, session, *origin, *dest, *depart)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runServer(cfg config.AppConfig, client *siri.Client, session *planner.Session) {
	var store *storage.Store
	var users server.UserStore
	if cfg.Storage.DatabasePath != "" {
		var err error
		store, err = storage.Open(cfg.Storage.DatabasePath)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		defer store.Close()
		users = store
	}

	var fleet server.Fleet
	if len(cfg.Vehicles.HubStops) > 0 {
		var positions vehicles.PositionSource
		if cfg.Vehicles.GTFSRTVehiclePositionsURL != "" {
			positions = vehicles.NewPositionFeed(cfg.Vehicles.GTFSRTVehiclePositionsURL)
		}
		agg := vehicles.NewAggregator(client, positions, cfg.Vehicles)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go agg.Run(ctx, vehicleRefreshInterval)
		fleet = agg
	}

	// Warm the graph so the first planning request does not pay the
	// discovery round trips.
	go func() {
		if err := session.BuildGraph(context.Background()); err != nil {
			log.Printf("graph warmup: %v", err)
		}
	}()

	api := server.NewAPI(client, session, fleet, users)
	srv := server.New(cfg.Server, api)
	srv.Start()
	srv.WaitForShutdown()
}

func runRoute(cfg config.AppConfig, session *planner.Session, origin, dest, depart string) {
	from, err := parsePoint(origin)
	if err != nil {
		log.Fatalf("-origin: %v", err)
	}
	to, err := parsePoint(dest)
	if err != nil {
		log.Fatalf("-dest: %v", err)
	}
	departure := time.Now()
	if depart != "" {
		departure, err = time.Parse(time.RFC3339, depart)
		if err != nil {
			log.Fatalf("-depart: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	options, err := session.FindRoutes(ctx, from, to, departure)
	if err != nil {
		log.Fatalf("find routes: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(options); err != nil {
		log.Fatalf("encode routes: %v", err)
	}
}

func parsePoint(s string) (planner.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return planner.Point{}, fmt.Errorf("expected lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return planner.Point{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return planner.Point{}, fmt.Errorf("longitude: %w", err)
	}
	return planner.Point{Lat: lat, Lng: lng}, nil
}
