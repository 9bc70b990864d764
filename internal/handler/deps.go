package handler

import (
	"parlor/internal/app/arena"
	"parlor/internal/configs"
)

type AppDeps struct {
	Hub    *arena.Hub
	Config *configs.AppConfig
}
