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

// Command shmchan-demo exercises a channel across two processes.
//
// Producer terminal:
//
//	shmchan-demo -role producer -n 100
//
// It prints the exported handle path; pass it to a consumer in another
// terminal:
//
//	shmchan-demo -role consumer -handle /dev/shm/shmchan-...
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"shmchan"
)

func main() {
	var (
		role     = flag.String("role", "producer", "producer or consumer")
		handle   = flag.String("handle", "", "segment path exported by the producer (consumer only)")
		capacity = flag.Uint("capacity", shmchan.DefaultCapacity, "arena capacity in bytes (producer only)")
		n        = flag.Int("n", 10, "number of messages to produce")
	)
	flag.Parse()

	switch *role {
	case "producer":
		if err := produce(uint32(*capacity), *n); err != nil {
			log.Fatalf("producer: %v", err)
		}
	case "consumer":
		if *handle == "" {
			log.Fatal("consumer needs -handle")
		}
		if err := consume(*handle); err != nil {
			log.Fatalf("consumer: %v", err)
		}
	default:
		log.Fatalf("unknown role %q", *role)
	}
}

func produce(capacity uint32, n int) error {
	ch, err := shmchan.New[string](capacity, shmchan.JSONCodec[string]{})
	if err != nil {
		return err
	}
	defer ch.Close()
	defer ch.Unlink()

	fmt.Printf("handle: %s\n", ch.Handle().Path)
	fmt.Println("waiting for a consumer; press Ctrl-C to abort")

	tx, _, err := ch.Split()
	if err != nil {
		return err
	}
	for i := 1; i <= n; i++ {
		msg := fmt.Sprintf("message %d of %d", i, n)
		for {
			err := tx.Send(msg)
			if err == nil {
				break
			}
			if !errors.Is(err, shmchan.ErrInsufficientSpace) {
				return err
			}
			// Ring full: wait for the consumer to drain.
			time.Sleep(10 * time.Millisecond)
		}
		log.Printf("sent %q (free: %d bytes)", msg, tx.Free())
	}
	// Give a late-starting consumer time to drain before the segment goes
	// away with our exit.
	time.Sleep(3 * time.Second)
	return nil
}

func consume(path string) error {
	ch, err := shmchan.Open[string](shmchan.Handle{Path: path}, shmchan.JSONCodec[string]{})
	if err != nil {
		return err
	}
	defer ch.Close()

	_, rx, err := ch.Split()
	if err != nil {
		return err
	}
	for {
		msg, ok, err := rx.Recv(5 * time.Second)
		if err != nil {
			return err
		}
		if !ok {
			log.Print("no message for 5s, exiting")
			return nil
		}
		log.Printf("received %q", msg)
	}
}
