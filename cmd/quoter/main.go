package main

import "github.com/cotizador/quoter/internal/app"

func main() {
	app.Run()
}
