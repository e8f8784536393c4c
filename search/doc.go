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


// Package search provides the retrieval engine over the chunk index.
//
// The Engine type embeds a query, delegates candidate scoring to the chunk
// repository, and returns ranked SearchHit views with the stored vectors
// stripped. Filters restrict candidates by conversation, participants, time
// window, and speakers; tombstoned chunks are excluded unless a maintenance
// caller explicitly asks for them. Query embeddings can be cached to skip
// repeated embedding calls for identical query text.
package search
