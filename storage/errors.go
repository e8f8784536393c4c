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


package storage

import "errors"

var (
	// ErrNotFound indicates the requested chunk, event, or cursor does not
	// exist.
	ErrNotFound = errors.New("record not found")

	// ErrTransactionFailed indicates a backend transaction could not commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrStorageClosed indicates the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed wraps codec failures on read or write.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData indicates a stored value ended before its record did.
	ErrTruncatedData = errors.New("truncated data")
)
