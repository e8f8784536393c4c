package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingestion"
)

// dialogue is one seed conversation. Turns alternate user/assistant starting
// with the user.
type dialogue struct {
	conversationId string
	participants   []string
	turns          []string
}

var dialogues = []dialogue{
	{
		conversationId: "conv_passport",
		participants:   []string{"李明"},
		turns: []string{
			"我护照是 2025-02-18 过期，续签要提前多久办？",
			"建议提前六个月办理护照续签，也就是最晚2024年8月开始准备材料。",
			"需要准备哪些材料？",
			"需要现有护照、身份证、两张白底证件照，以及填写好的申请表。",
			"照片可以用去年拍的吗？",
			"只要是六个月内拍摄的白底证件照就可以使用。",
		},
	},
	{
		conversationId: "conv_flight",
		participants:   []string{"李明"},
		turns: []string{
			"帮我查一下下周三去上海的航班。",
			"下周三上午有三班直飞上海的航班，分别是8点、10点半和11点45分起飞。",
			"I'd prefer the morning one, aisle seat if possible.",
			"Booked the 8:00 departure with an aisle seat, 14C. Confirmation number is XK42P.",
			"行李额度是多少？",
			"经济舱含一件23公斤托运行李和一件7公斤手提行李。",
		},
	},
	{
		conversationId: "conv_address",
		participants:   []string{"王芳"},
		turns: []string{
			"我搬家了，帮我把收货地址改成朝阳区建国路88号。",
			"好的，默认收货地址已更新为朝阳区建国路88号。",
			"旧地址的在途包裹会受影响吗？",
			"已发出的包裹仍会送到旧地址，之后的订单使用新地址。",
		},
	},
	{
		conversationId: "conv_standup",
		participants:   []string{"Alice", "Bob"},
		turns: []string{
			"Can you move our Tuesday standup to 9:30? The 9:00 slot clashes with the platform sync.",
			"Done. The standup now recurs Tuesdays at 9:30 in the same room.",
			"Also invite the new intern starting next Monday.",
			"Added. They'll receive the recurring invite from next week on.",
		},
	},
	{
		conversationId: "conv_visa",
		participants:   []string{"李明"},
		turns: []string{
			"去日本旅游需要办签证吗？",
			"持中国护照去日本旅游需要提前办理旅游签证，单次签证一般需要五个工作日。",
			"那我的护照快过期了，会影响签证申请吗？",
			"护照有效期不足六个月时多数使领馆不受理签证申请，建议先完成护照续签。",
		},
	},
	{
		conversationId: "conv_recipe",
		participants:   []string{"王芳"},
		turns: []string{
			"冰箱里只有鸡蛋、番茄和挂面，晚饭能做什么？",
			"可以做番茄鸡蛋面：先炒香番茄出汁，加水烧开后下面条，最后淋入蛋液。",
			"需要加糖吗？",
			"加小半勺糖可以中和番茄的酸味，按口味调整即可。",
		},
	},
}

var (
	seedFileName = flag.String("src", "", "file of seed dialogue lines (alternating user/assistant)")
	dbPath       = flag.String("db", "./recall_db", "path to the database directory")
	mockAI       = flag.Bool("mock-ai", false, "use deterministic in-process AI services")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// eventsFor expands a dialogue into memory events, one minute apart.
func eventsFor(d dialogue, start time.Time) []core.MemoryEvent {
	events := make([]core.MemoryEvent, 0, len(d.turns))
	for i, text := range d.turns {
		speaker := core.SpeakerTypeUser
		if i%2 == 1 {
			speaker = core.SpeakerTypeAssistant
		}
		events = append(events, core.MemoryEvent{
			EventId:        fmt.Sprintf("seed_%s_%d", d.conversationId, i+1),
			ConversationId: d.conversationId,
			TurnId:         i + 1,
			Speaker:        speaker,
			Text:           text,
			Timestamp:      start.Add(time.Duration(i) * time.Minute),
			Participants:   d.participants,
		})
	}
	return events
}

// dialogueFromLines folds file lines into a single seed conversation.
func dialogueFromLines(source iter.Seq[string]) dialogue {
	d := dialogue{
		conversationId: "conv_seed_file",
		participants:   []string{"seed"},
	}
	for line := range source {
		if line == "" {
			continue
		}
		d.turns = append(d.turns, line)
	}
	return d
}

func main() {
	opts := []recall.DatabaseOption{}
	if *mockAI {
		opts = append(opts, recall.WithMockAI())
	}

	db, err := recall.NewDatabase(*dbPath, opts...)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	seeds := dialogues
	if *seedFileName != "" {
		source, err := linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
		seeds = []dialogue{dialogueFromLines(source)}
	}

	start := time.Now().UTC().Add(-time.Duration(len(seeds)) * time.Hour)
	for i, d := range seeds {
		if err := ingestWithRetry(ctx, pipeline, eventsFor(d, start.Add(time.Duration(i)*time.Hour))); err != nil {
			panic(err)
		}
	}

	if err := pipeline.Flush(ctx); err != nil {
		panic(err)
	}

	stats := pipeline.Stats()
	slog.Info("seeding complete",
		"events", stats.EventsAccepted,
		"runs", stats.RunsIndexed,
		"chunks", stats.ChunksUpserted,
		"failed", stats.RunsFailed)
}

// ingestWithRetry backs off briefly when the pipeline signals backlog.
func ingestWithRetry(ctx context.Context, pipeline *ingestion.Pipeline, events []core.MemoryEvent) error {
	for {
		err := pipeline.Ingest(ctx, events...)
		if err == nil {
			return nil
		}
		if !errors.Is(err, core.ErrBacklog) {
			return err
		}
		time.Sleep(100 * time.Millisecond)
	}
}
