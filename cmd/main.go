package main

import (
	"github.com/quickbasket/order-svc/internal/app"
	"github.com/quickbasket/order-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
