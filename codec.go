/*
 * Copyright 2025 The shmchan Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shmchan

import "encoding/json"

// Codec converts values of type T to and from frame payload bytes. It is the
// channel's sole extensibility point: the channel owns the length-prefix
// framing and is otherwise payload-agnostic.
//
// Decode is only ever called with a complete payload as delimited by the
// frame's length prefix.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(p []byte) (T, error)
}

// BytesCodec passes raw byte slices through unmodified. Decode copies, since
// the input aliases a transient probe buffer.
type BytesCodec struct{}

func (BytesCodec) Encode(v []byte) ([]byte, error) { return v, nil }

func (BytesCodec) Decode(p []byte) ([]byte, error) {
	out := make([]byte, len(p))
	copy(out, p)
	return out, nil
}

// JSONCodec carries any JSON-serializable type over the channel.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec[T]) Decode(p []byte) (T, error) {
	var v T
	err := json.Unmarshal(p, &v)
	return v, err
}
