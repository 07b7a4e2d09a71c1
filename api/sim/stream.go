package simapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	dmn "github.com/beka-birhanu/vinom-sim/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = time.Second
	// Interval between pings; the peer is gone after pongWait without a pong.
	pingPeriod = 500 * time.Millisecond
	pongWait   = 4 * pingPeriod
)

var (
	upgrader = websocket.Upgrader{}

	ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")
)

// stream upgrades to a websocket and pushes every frame as JSON.
func (ec *EpisodeController) stream(ctx *gin.Context) {
	var request StreamRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var only uuid.UUID
	if request.Episode != "" {
		only = uuid.MustParse(request.Episode)
	}

	ws, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	group, groupCtx := errgroup.WithContext(ctx.Request.Context())
	frames := ec.producer.Subscribe(groupCtx.Done())

	group.Go(func() error { return readMessages(ws) })
	group.Go(func() error { return pingPong(groupCtx, ws) })
	group.Go(func() error { return publish(groupCtx, ws, frames, only) })
	group.Go(func() error {
		// Unblocks readMessages once any other routine gave up.
		<-groupCtx.Done()
		return ws.SetReadDeadline(time.Now())
	})

	_ = group.Wait()
	_ = ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// readMessages drains the peer; a read error is permanent and ends the stream.
func readMessages(ws *websocket.Conn) error {
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return err
		}
	}
}

// pingPong needs readMessages running for the pong handler to be called.
func pingPong(ctx context.Context, ws *websocket.Conn) error {
	pong := make(chan struct{}, 1)
	ws.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingPeriod)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pong:
			lastPong = time.Now()
		case _, ok := <-pinger:
			if !ok {
				return nil
			}
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
		}
	}
}

func publish(ctx context.Context, ws *websocket.Conn, frames <-chan dmn.FrameEvent, only uuid.UUID) error {
	for event := range channerics.OrDone(ctx.Done(), frames) {
		if only != uuid.Nil && event.EpisodeID != only {
			continue
		}
		if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		if err := ws.WriteJSON(event); err != nil {
			return fmt.Errorf("publish failed: %w", err)
		}
	}
	return nil
}
