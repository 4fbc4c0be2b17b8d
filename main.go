package main

import "dobtasks/internal/app"

func main() {
	app.Run()
}
