package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/fb-events/internal/calendar"
	"github.com/pfrederiksen/fb-events/internal/event"
)

func main() {
	str := func(s string) *string { return &s }
	num := func(f float64) *float64 { return &f }

	start := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Hour)
	end := start.Add(3 * time.Hour).Unix()

	// A physical event and an online one
	events := []*event.GenericEvent{
		{
			ID:             "1234567890",
			SourceURL:      event.SourceURL("1234567890"),
			Title:          "Jazz Night at Kulturhuset",
			Description:    str("Live music, open stage afterwards."),
			StartTimestamp: start.Unix(),
			EndTimestamp:   &end,
			Location: &event.Location{Place: &event.EventLocation{
				PlaceName:     str("Kulturhuset"),
				Address:       str("Islands Brygge 18"),
				City:          str("Copenhagen"),
				CountryAlpha2: str("DK"),
				Latitude:      num(55.6636),
				Longitude:     num(12.5781),
			}},
		},
		{
			ID:               "9876543210",
			SourceURL:        event.SourceURL("9876543210"),
			Title:            "Weekly Online Meetup",
			StartTimestamp:   start.Add(24 * time.Hour).Unix(),
			Location:         &event.Location{Online: true},
			IsRepeatingEvent: true,
		},
	}

	icsContent := calendar.GenerateICS(events...)

	// Write to file (owner read/write only for security)
	filename := "test-fb-events.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
