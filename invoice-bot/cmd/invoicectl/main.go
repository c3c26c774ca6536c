package main

import "notaFacilBot/invoice-bot/internal/cli"

func main() {
	cli.Execute()
}
