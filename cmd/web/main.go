package main

import "recipebook_backend/internal/app"

func main() {
	app.Run()
}
