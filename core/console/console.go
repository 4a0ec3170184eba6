// Package console hands browsers a remote framebuffer connection to
// their instance. The hypervisor issues a one-shot WebSocket URL; the
// bridge relays frames between the caller and that URL so the VNC
// backend never has to be reachable from outside.
package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/vietcloud/vpshop/api/web"
	"github.com/vietcloud/vpshop/api/weberr"
	"github.com/vietcloud/vpshop/compute"
	"github.com/vietcloud/vpshop/core/instance"
)

// Sessions is the slice of the hypervisor client this package needs.
type Sessions interface {
	ConsoleSession(ctx context.Context, id string) (compute.ConsoleSession, error)
}

// HandleCreateSession asks the hypervisor for a console session and
// returns its WebSocket URL. The console is only offered on a running
// instance.
func HandleCreateSession(db *sqlx.DB, sess Sessions) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		inst, err := instance.FetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if !inst.Status.Allows(instance.ActionConsole) {
			err := fmt.Errorf("console is not available while instance is %s", inst.Status)
			return weberr.Conflict(err)
		}

		cs, err := sess.ConsoleSession(ctx, inst.ExternalVMID)
		if err != nil {
			var ce *compute.Error
			if errors.As(err, &ce) && ce.Message != "" {
				return weberr.NewError(err, ce.Message, http.StatusBadGateway)
			}
			return weberr.NewError(err, "console service is unavailable", http.StatusBadGateway)
		}

		return web.Respond(ctx, w, cs, http.StatusCreated)
	}
}

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

// Bridge relays WebSocket frames between a storefront client and the
// hypervisor console endpoint.
type Bridge struct {
	Log      logrus.FieldLogger
	Sessions Sessions
	Upgrader websocket.Upgrader
}

func NewBridge(log logrus.FieldLogger, sess Sessions, checkOrigin func(*http.Request) bool) *Bridge {
	return &Bridge{
		Log:      log,
		Sessions: sess,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Handle upgrades the caller and pipes frames both ways until either
// side closes. Teardown is symmetric: the first error closes both
// conns and stops both copy loops.
func (b *Bridge) Handle(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		inst, err := instance.FetchOwned(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if !inst.Status.Allows(instance.ActionConsole) {
			err := fmt.Errorf("console is not available while instance is %s", inst.Status)
			return weberr.Conflict(err)
		}

		cs, err := b.Sessions.ConsoleSession(ctx, inst.ExternalVMID)
		if err != nil {
			return weberr.NewError(err, "console service is unavailable", http.StatusBadGateway)
		}

		upstream, _, err := websocket.DefaultDialer.DialContext(ctx, cs.WSURL, nil)
		if err != nil {
			return fmt.Errorf("dialing console backend: %w", err)
		}

		client, err := b.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			upstream.Close()
			return fmt.Errorf("upgrading console client: %w", err)
		}

		log := b.Log.WithField("instance_id", inst.ID)
		done := make(chan struct{}, 2)

		relay := func(dst, src *websocket.Conn) {
			defer func() { done <- struct{}{} }()

			src.SetReadDeadline(time.Now().Add(pongWait))
			for {
				mt, msg, err := src.ReadMessage()
				if err != nil {
					return
				}
				src.SetReadDeadline(time.Now().Add(pongWait))

				dst.SetWriteDeadline(time.Now().Add(writeWait))
				if err := dst.WriteMessage(mt, msg); err != nil {
					return
				}
			}
		}

		go relay(upstream, client)
		go relay(client, upstream)

		<-done
		client.Close()
		upstream.Close()
		<-done

		log.Info("console session closed")
		return nil
	}
}
