// Command examplesubscriber is a minimal HTTP sink for manual testing of
// the exposure bus. It is not wired into the emulator or controller: point
// a Subscriber's notify_endpoint at this process and it logs every
// delivered event batch.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/mnedge/emulator/internal/model"
)

func main() {
	port := flag.Int("port", 8789, "port to listen on")
	flag.Parse()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var events []model.Event
		if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
			log.Printf("[examplesubscriber] decode batch: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		log.Printf("[examplesubscriber] received %d event(s)", len(events))
		for _, e := range events {
			log.Printf("[examplesubscriber]   %s user=%d payload=%+v", e.Kind, e.UserID, e.Payload)
		}
		w.WriteHeader(http.StatusOK)
	})

	log.Printf("[examplesubscriber] listening on :%d", *port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", *port), nil); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
