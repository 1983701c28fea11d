package main

import "github.com/JeanCarlos070456/web-scraping-upa/cmd"

func main() {
	cmd.Execute()
}
