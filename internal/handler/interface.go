package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// RegisterConfig carries the dependencies a manager may need.
type RegisterConfig struct {
	DB *gorm.DB
}

type Register func(conf RegisterConfig) Manager

// Registers collects the manager constructors; handler files append to it
// from their init functions.
var Registers []Register
