package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/boardsearch"
	"github.com/poiesic/boardsearch/core"
)

var boardNames = []string{"General Discussion", "Hardware", "Trading Post"}

var topicSubjects = []string{
	"Favorite lantern designs for camping",
	"Mechanical keyboard switch comparison thread",
	"Restoring an old oak bookshelf",
	"Best coffee roasters in the region",
	"Fixing a creaking wooden bridge",
	"Comet watching meetup next month",
	"Honey extraction without damaging the hive",
	"Lighthouse photography tips",
	"Homemade stew recipes for winter",
	"Kite building for beginners",
}

var sentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"A gentle breeze rustled the leaves of the old oak tree.",
	"She found a hidden key in the dusty attic.",
	"The city skyline glowed under the starry night sky.",
	"Rain drummed on the rooftop, creating a soothing rhythm.",
	"A bright comet streaked across the horizon at midnight.",
	"The ancient library held stories that never faded.",
	"The hummingbird hovered beside a vibrant purple flower.",
	"A mysterious map led them to a forgotten treasure.",
	"They tasted the sweetest strawberries from the farmer's garden.",
	"A sudden thunderclap shattered the silence of the forest.",
	"The desert dunes shifted silently under a pale moon.",
	"She painted the sunset with bold strokes of crimson and gold.",
	"He built a wooden bridge across the swift river.",
	"A lone wolf howled, echoing into the vast night.",
	"The moon rose slowly, casting silver light on the lake.",
	"The train rattled through tunnels carved into stone.",
	"A gentle snowfall blanketed the city in quiet white.",
	"The lighthouse beam cut through fog, guiding sailors safely.",
	"She tasted honey straight from a beehive's sweet core.",
	"He watched the sunrise paint the horizon pink and orange.",
	"He carved a wooden boat from a single piece of oak.",
	"She collected seashells along the rocky shore.",
	"He carried a lantern into the dark forest, illuminating paths.",
	"The night sky glittered with countless stars.",
	"He measured how far his kite flew above the trees.",
	"They tasted soup simmering on the stove with fresh herbs.",
	"A gentle wind lifted the lantern, making its flame dance.",
	"Coffee tastes better when nobody's watching.",
	"The abandoned lighthouse still broadcasts its warning every third Tuesday.",
}

var authors = []string{"alice", "bob", "carol", "dave", "erin"}

func main() {
	dbPath := flag.String("db", "./board_db", "path to BadgerDB database directory")
	perTopic := flag.Int("messages", 12, "messages per topic")
	flag.Parse()

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))

	if err := run(*dbPath, *perTopic); err != nil {
		slog.Error("seeding failed", "err", err)
		os.Exit(1)
	}
}

func run(dbPath string, perTopic int) error {
	ctx := context.Background()

	svc, err := boardsearch.Open(dbPath)
	if err != nil {
		return err
	}
	defer svc.Close()

	boards := make([]*core.Board, 0, len(boardNames)+1)
	for _, name := range boardNames {
		boards = append(boards, &core.Board{Name: name})
	}
	boards = append(boards, &core.Board{Name: "Recycle Bin", RecycleBin: true})
	boards, err = svc.BoardRepository().AddBoards(ctx, boards...)
	if err != nil {
		return err
	}

	total := 0
	for i, subject := range topicSubjects {
		board := boards[i%len(boardNames)]
		topics, err := svc.TopicRepository().AddTopics(ctx, &core.Topic{
			BoardId: board.Id,
			Sticky:  i == 0,
		})
		if err != nil {
			return err
		}
		topic := topics[0]

		for j := 0; j < perTopic; j++ {
			body := sentences[(i*perTopic+j)%len(sentences)]
			_, err := svc.PostMessages(ctx, &core.Message{
				TopicId:    topic.Id,
				AuthorName: authors[(i+j)%len(authors)],
				Subject:    subject,
				Body:       body,
			})
			if err != nil {
				return err
			}
			total++
		}
	}

	fmt.Printf("seeded %d boards, %d topics, %d messages\n", len(boards), len(topicSubjects), total)
	return nil
}
