package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/g026r/pocket-gallery/pkg/server"
)

func main() {
	f := pflag.NewFlagSet("galleryd", pflag.ExitOnError)
	addr := f.String("addr", ":8080", "address to listen on")
	dir := f.String("dir", "./gallery-data", "directory the images & index are kept in")
	publicURL := f.String("public-url", "", "prefix for the file links handed to clients; relative links if empty")
	_ = f.Parse(os.Args[1:])

	store, err := server.NewStore(*dir)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.New(store, *publicURL).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Serving %s on %s", *dir, *addr)
	log.Fatal(srv.ListenAndServe())
}
