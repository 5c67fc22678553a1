package util

import (
	"github.com/gin-gonic/gin"

	"github.com/gbif/occurrence-annotation/dao/model"
	"github.com/gbif/occurrence-annotation/dao/store"
)

const (
	UsernameKey = "x-user-name"
	RoleKey     = "x-user-role"
)

func SetJWTContext(c *gin.Context, msg JWTMessage) {
	c.Set(UsernameKey, msg.Username)
	c.Set(RoleKey, msg.Role)
}

func GetToken(ctx *gin.Context) JWTMessage {
	var msg JWTMessage
	msg.Username = ctx.GetString(UsernameKey)

	role, _ := ctx.Get(RoleKey)
	if r, ok := role.(model.Role); ok {
		msg.Role = r
	}
	return msg
}

// GetActor converts the JWT context into the actor passed to the store.
func GetActor(ctx *gin.Context) store.Actor {
	msg := GetToken(ctx)
	return store.Actor{Username: msg.Username, Role: msg.Role}
}
