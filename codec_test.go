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

import (
	"errors"
	"testing"
)

type request struct {
	Op    string `json:"op"`
	Count uint32 `json:"count,omitempty"`
}

func TestJSONCodecOverChannel(t *testing.T) {
	ch, err := New[request](1024, JSONCodec[request]{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ch.Close()
	defer ch.Unlink()
	tx, rx, err := ch.Split()
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	sent := []request{
		{Op: "init"},
		{Op: "done", Count: 42},
	}
	for _, req := range sent {
		if err := tx.Send(req); err != nil {
			t.Fatalf("Send(%+v) failed: %v", req, err)
		}
	}
	for _, want := range sent {
		got, ok, err := rx.Poll()
		if err != nil || !ok {
			t.Fatalf("Poll = (ok=%v, err=%v), want message", ok, err)
		}
		if got != want {
			t.Fatalf("Poll returned %+v, want %+v", got, want)
		}
	}
}

func TestEncodeErrorPropagates(t *testing.T) {
	// Channels cannot be marshaled; json.Marshal fails.
	ch, err := New[chan int](256, JSONCodec[chan int]{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ch.Close()
	defer ch.Unlink()
	tx, _, err := ch.Split()
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	sendErr := tx.Send(make(chan int))
	var encErr *EncodeError
	if !errors.As(sendErr, &encErr) {
		t.Fatalf("Send = %v, want *EncodeError", sendErr)
	}
}

func TestDecodeErrorAdvancesPastFrame(t *testing.T) {
	// Raw bytes in, JSON expected out: the first frame is garbage to the
	// receiver's codec, the second is valid. The receiver must surface the
	// decode failure once and then deliver the valid frame, rather than
	// re-reading the poisoned bytes forever.
	ch, err := New[[]byte](1024, BytesCodec{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ch.Close()
	defer ch.Unlink()
	tx, _, err := ch.Split()
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	view, err := Open[request](ch.Handle(), JSONCodec[request]{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer view.Close()
	_, rx, err := view.Split()
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if err := tx.Send([]byte("{not json")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := tx.Send([]byte(`{"op":"init"}`)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	_, ok, err := rx.Poll()
	var decErr *DecodeError
	if !errors.As(err, &decErr) || ok {
		t.Fatalf("first Poll = (ok=%v, err=%v), want *DecodeError", ok, err)
	}

	got, ok, err := rx.Poll()
	if err != nil || !ok {
		t.Fatalf("second Poll = (ok=%v, err=%v), want message", ok, err)
	}
	if got.Op != "init" {
		t.Fatalf("second Poll returned %+v, want op=init", got)
	}
}

func TestBytesCodecCopies(t *testing.T) {
	tx, rx := newByteChannel(t, 256)

	if err := tx.Send([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	first, _, err := rx.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}

	// Cycle more traffic through the same arena bytes; the earlier result
	// must not be clobbered.
	for i := 0; i < 20; i++ {
		if err := tx.Send([]byte{0xEE, 0xEE, 0xEE}); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if _, _, err := rx.Poll(); err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
	}
	if first[0] != 1 || first[1] != 2 || first[2] != 3 {
		t.Fatalf("earlier payload mutated: %v", first)
	}
}
