// Package main seeds a running server with a demo account and a sample
// travel notebook through the public API.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed --server http://localhost:8080 --pages 5
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/journalapp/journal-server/pkg/client"
	"github.com/journalapp/journal-server/pkg/domain"
	"github.com/journalapp/journal-server/pkg/editor"
)

var (
	server   = flag.String("server", "http://localhost:8080", "Server base URL")
	email    = flag.String("email", "demo@example.com", "Demo account email")
	password = flag.String("password", "demo-password-123", "Demo account password")
	pages    = flag.Int("pages", 3, "Pages to create in the sample notebook")
)

var captions = []string{
	"Landed at last!",
	"Best pastel de nata so far",
	"Tram 28 up the hill",
	"Sunset at the miradouro",
	"Rain all afternoon, museum day",
	"Train to Porto",
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := client.New(*server)

	fmt.Printf("Signing in as %s at %s\n", *email, *server)
	if err := signIn(ctx, c); err != nil {
		log.Fatalf("Failed to sign in: %v", err)
	}

	start := time.Now().AddDate(0, 0, -*pages)
	end := time.Now()
	nb, err := c.CreateNotebook(ctx, client.CreateNotebookRequest{
		Title:       "Lisbon & Porto",
		Description: "Sample notebook created by the seed tool",
		CoverColor:  "#e07a5f",
		TripStart:   &start,
		TripEnd:     &end,
	})
	if err != nil {
		log.Fatalf("Failed to create notebook: %v", err)
	}
	fmt.Printf("Created notebook %s (%s)\n", nb.Title, nb.ID)

	var elements int
	for day := range *pages {
		page, err := c.CreatePage(ctx, nb.ID, client.CreatePageRequest{Title: fmt.Sprintf("Day %d", day+1)})
		if err != nil {
			log.Fatalf("Failed to create page %d: %v", day+1, err)
		}

		for _, draft := range pageDrafts(day) {
			if _, err := c.CreateElement(ctx, page.ID, draft); err != nil {
				log.Fatalf("Failed to create %s element on page %d: %v", draft.Kind, page.PageNumber, err)
			}
			elements++
		}
		fmt.Printf("  Page %d: %s\n", page.PageNumber, page.Title)
	}

	fmt.Printf("\nSeeded %d pages with %d elements\n", *pages, elements)
}

// signIn logs in, registering the account first if it does not exist yet.
func signIn(ctx context.Context, c *client.Client) error {
	_, err := c.Login(ctx, *email, *password)
	if err == nil {
		return nil
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_CREDENTIALS" {
		return err
	}

	fmt.Println("Account not found, registering")
	_, err = c.Register(ctx, *email, *password, "Demo Traveller")
	return err
}

func pageDrafts(day int) []editor.Draft {
	z := func(n int) *int { return &n }
	return []editor.Draft{
		{
			Kind:     domain.KindShape,
			Geometry: domain.Geometry{X: 40, Y: 40, Width: 520, Height: 320, Rotation: -2},
			ZIndex:   z(0),
			Content:  domain.ElementContent{Shape: &domain.ShapeContent{Shape: "rect", Fill: "#f4f1de", Stroke: "#3d405b", StrokeWidth: 2}},
		},
		{
			Kind:     domain.KindText,
			Geometry: domain.Geometry{X: 70, Y: 80, Width: 420, Height: 60},
			ZIndex:   z(1),
			Content: domain.ElementContent{Text: &domain.TextContent{
				Text:     captions[day%len(captions)],
				FontSize: 28,
				Color:    "#3d405b",
			}},
		},
		{
			Kind:     domain.KindSticker,
			Geometry: domain.Geometry{X: 440, Y: 260, Width: 96, Height: 96, Rotation: 12},
			ZIndex:   z(2),
			Content:  domain.ElementContent{Sticker: &domain.StickerContent{StickerID: "airplane"}},
		},
		{
			Kind:     domain.KindEmoji,
			Geometry: domain.Geometry{X: 80, Y: 240, Width: 64, Height: 64},
			ZIndex:   z(3),
			Content:  domain.ElementContent{Emoji: &domain.EmojiContent{Emoji: "☀️"}},
		},
	}
}
