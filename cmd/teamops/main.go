package main

import (
	"flag"

	"kyri56xcaesar/teamops/internal/httpapi"
)

func main() {
	confPath := flag.String("config", ".env", "path to the environment config file")
	flag.Parse()

	httpapi.InitAndServe(*confPath)
}
