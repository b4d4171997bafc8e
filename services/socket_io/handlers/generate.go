package handlers

import (
	"Coplay/services/aggregation"
	"Coplay/services/session"
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// How long one aggregation may spend on provider calls before it is abandoned.
const generateTimeout = 2 * time.Minute

// HandleGenerate runs the shared-library aggregation for the requesting
// client. The result is unicast back to that client only: other members may
// have asked with different filters and must not have their view overwritten.
func HandleGenerate(sessions *session.Manager, engine *aggregation.Engine,
	client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, err := parseGenerate(args)
		if err != nil {
			client.Emit("error", gin.H{"error": "Invalid generate payload: " + err.Error()})
			return
		}

		log.Printf("[GENERATE] Room %s, filters tag=%q category=%q price=%q (socket %s)",
			payload.RoomNumber, payload.TagSelection, payload.CategorySelection,
			payload.PriceSelection, client.Id())

		roster, err := sessions.Roster(payload.RoomNumber)
		if err != nil {
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()

		result, err := engine.Generate(ctx, roster, aggregation.Request{
			RoomCode:    payload.RoomNumber,
			TagFilter:   payload.TagSelection,
			GenreFilter: payload.CategorySelection,
			PriceBucket: payload.PriceSelection,
		})
		if err != nil {
			log.Printf("[GENERATE-ERROR] Room %s: %v", payload.RoomNumber, err)
			client.Emit("error", gin.H{"error": "Could not generate the shared list"})
			return
		}

		client.Emit("finalList", finalListPayload(roster, result))
	}
}

// finalListPayload flattens the aggregation result into the parallel arrays
// the frontend consumes.
func finalListPayload(roster []session.Member, result *aggregation.Result) gin.H {
	games := make([]string, 0, len(result.Games))
	owners := make([][]int, 0, len(result.Games))
	images := make([]string, 0, len(result.Games))
	links := make([]string, 0, len(result.Games))
	prices := make([][2]int, 0, len(result.Games))
	categories := make([]string, 0, len(result.Games))

	for _, game := range result.Games {
		games = append(games, game.Title)
		owners = append(owners, game.Owners)
		images = append(images, game.HeaderImage)
		links = append(links, game.StoreURL)
		prices = append(prices, [2]int{game.InitialPrice, game.Price})
		categories = append(categories, game.Genre)
	}

	tagOptions := result.TagOptions
	if tagOptions == nil {
		tagOptions = []string{}
	}

	return gin.H{
		"roomMembers": rosterPayload(roster),
		"games":       games,
		"owners":      owners,
		"images":      images,
		"links":       links,
		"tags":        tagOptions,
		"prices":      prices,
		"categories":  categories,
	}
}
