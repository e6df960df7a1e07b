package models

import "time"

type VideoToken struct {
	Token     string    `json:"token"`
	Channel   string    `json:"channel"`
	UID       uint32    `json:"uid"`
	AppID     string    `json:"app_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
