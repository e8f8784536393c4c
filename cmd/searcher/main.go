// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/core"
)

var (
	dbPath = flag.String("db", "./recall_db", "path to the database directory")
	mockAI = flag.Bool("mock-ai", false, "use deterministic in-process AI services")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
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

	engine, err := db.NewEngine()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	query := "护照"
	if flag.NArg() > 0 {
		query = strings.Join(flag.Args(), " ")
	}

	hits, err := engine.Query(ctx, query, 5, core.QueryFilters{})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Printf("%d: [%0.3f] %s %s turns %d-%d\n",
			i, hit.Score, hit.ChunkId,
			hit.Metadata.ConversationId, hit.Metadata.Turns.Start, hit.Metadata.Turns.End)
		fmt.Printf("   %s\n", hit.Text)
	}
}
