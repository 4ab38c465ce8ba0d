package room

import (
	"time"

	"github.com/livekit/protocol/auth"
)

// JoinToken mints a LiveKit access token for joining roomName with the
// given identity. Used for local development and for handing join tokens to
// the frontend.
func JoinToken(apiKey, apiSecret, roomName, identity string, ttl time.Duration) (string, error) {
	at := auth.NewAccessToken(apiKey, apiSecret)
	at.SetVideoGrant(&auth.VideoGrant{
		RoomJoin: true,
		Room:     roomName,
	}).
		SetIdentity(identity).
		SetValidFor(ttl)
	return at.ToJWT()
}
