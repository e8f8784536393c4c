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


// Package chunk turns ordered conversation events into overlapping text
// spans ready for embedding.
//
// The Builder type accumulates dialogue lines of the form
// "{speaker}: {text}" into a character (or token) budget, flushing a span
// whenever the budget is reached and carrying a short tail of lines into
// the next span so adjacent spans overlap. Each produced span carries:
//   - A deterministic id derived from its conversation, turn range, and
//     version, so rebuilding the same turns yields the same id
//   - A synthesized context prefix naming the date, participants, and a
//     detected intent tag
//   - Metadata covering the turn range, timestamp range, participants,
//     and speakers of the events it was built from
//
// The builder never touches storage. With the default keyword-rule intent
// tags, the same event sequence always produces the same spans.
package chunk
