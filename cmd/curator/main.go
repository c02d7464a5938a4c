package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "tour":
		tourCmd(apiURL, args)
	case "suggest":
		suggestCmd(apiURL, args)
	case "show":
		showCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Curator - drives the Atelier Korea API as one visitor

USAGE:
  curator <command> [options]

COMMANDS:
  tour      Save two ateliers, craft a piece, then suggest and save a route
  suggest   Ask the archives for a route
  show      Print a profile's collection
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Walk through every collection feature as a new visitor
  curator tour

  # Suggest a week-long slow trip by the sea
  curator suggest --days=7 --pace=Slow --theme=Sea

  # Inspect what a visitor has collected
  curator show --profile=6f1c...`)
}

func tourCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("tour", flag.ExitOnError)
	profile := fs.String("profile", "", "Profile ID to act as (default: a new visitor)")
	days := fs.Int("days", 5, "Trip length in days")
	pace := fs.String("pace", "Balanced", "Slow, Balanced or Deep")
	fs.Parse(args)

	client := NewAPIClient(apiURL, *profile)

	fmt.Println("=== Curator: Tour ===")
	fmt.Println()

	fmt.Print("Reading the catalog... ")
	ateliers, err := client.ListAteliers()
	if err != nil {
		fail(err)
	}
	if len(ateliers) < 2 {
		fail(fmt.Errorf("catalog has %d ateliers, need at least 2", len(ateliers)))
	}
	fmt.Printf("OK (%d ateliers)\n", len(ateliers))

	// 1. Save two ateliers
	for _, a := range ateliers[:2] {
		saved, err := client.ToggleSave(a.Slug)
		if err != nil {
			fail(err)
		}
		fmt.Printf("  %-24s saved=%v\n", a.Slug, saved)
	}
	fmt.Printf("  Profile: %s\n", client.ProfileID())

	// 2. Answer the first atelier's question
	first := ateliers[0]
	choice := first.Piece.Choices[0]
	fmt.Println()
	fmt.Printf("%s\n  > %s\n", first.Piece.Question, choice.Label)
	fmt.Print("Crafting piece... ")
	result, err := client.CraftPiece(first.Slug, choice.ID)
	if err != nil {
		fail(err)
	}
	if result.Issued {
		fmt.Println("OK")
	} else {
		fmt.Println("already held")
	}
	fmt.Printf("  \"%s\"\n", result.Piece.GeneratedLine)

	// 3. Suggest and save a route
	fmt.Println()
	fmt.Print("Consulting the archives... ")
	suggestion, err := client.Suggest(*days, *pace, "Any")
	if err != nil {
		fail(err)
	}
	fmt.Println("OK")
	printSuggestion(suggestion)

	if len(suggestion.Ateliers) > 0 {
		slugs := make([]string, len(suggestion.Ateliers))
		for i, a := range suggestion.Ateliers {
			slugs[i] = a.Slug
		}
		route, err := client.SaveRoute(suggestion.Title, slugs)
		if err != nil {
			fail(err)
		}
		fmt.Printf("  Saved route %s\n", route.ID)
	}

	fmt.Println()
	printCollection(client)
}

func suggestCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	days := fs.Int("days", 3, "Trip length in days (1-30)")
	pace := fs.String("pace", "Balanced", "Slow, Balanced or Deep")
	theme := fs.String("theme", "Any", "Any, Sea, Ritual, Grain, Raw or Taste")
	fs.Parse(args)

	client := NewAPIClient(apiURL, "")
	suggestion, err := client.Suggest(*days, *pace, *theme)
	if err != nil {
		fail(err)
	}
	printSuggestion(suggestion)
}

func showCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	profile := fs.String("profile", "", "Profile ID to inspect (required)")
	fs.Parse(args)

	if *profile == "" {
		fmt.Println("Error: --profile is required")
		os.Exit(1)
	}

	printCollection(NewAPIClient(apiURL, *profile))
}

func printSuggestion(s *Suggestion) {
	fmt.Printf("  %s\n", s.Title)
	if len(s.Ateliers) == 0 {
		fmt.Println("  (no ateliers match this theme)")
	}
	for _, a := range s.Ateliers {
		fmt.Printf("  - %s (%s, %s)\n", a.DisplayName, a.CollectionID, a.PaceTag)
	}
}

func printCollection(client *APIClient) {
	col, err := client.Collection()
	if err != nil {
		fail(err)
	}

	fmt.Println("=========================================")
	fmt.Printf("  COLLECTION %s\n", col.ProfileID)
	fmt.Println("=========================================")
	fmt.Printf("  Saved:  %v\n", col.SavedAtelierSlugs)
	fmt.Printf("  Pieces: %d\n", len(col.IssuedPieces))
	for _, p := range col.IssuedPieces {
		fmt.Printf("    %s: %s\n", p.AtelierSlug, p.GeneratedLine)
	}
	fmt.Printf("  Routes: %d\n", len(col.SavedRoutes))
	for _, r := range col.SavedRoutes {
		fmt.Printf("    %s %v\n", r.Title, r.AtelierSlugs)
	}
}

func fail(err error) {
	fmt.Printf("FAILED\n  Error: %v\n", err)
	os.Exit(1)
}
