package main

import (
	"transcription-service/app"
)

func main() {
	app.Run()
}
