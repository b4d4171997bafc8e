package socket_io

import (
	"Coplay/services/aggregation"
	"Coplay/services/session"
	"Coplay/services/socket_io/handlers"
	socketio_types "Coplay/services/socket_io/types"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

// Start mounts the socket.io server on the gin router and registers the room
// event handlers. Identity travels inside the "message" payload (the OpenID
// handshake happens before the socket connects), so connections are admitted
// without an auth step.
func (sio *MySocketServer) Start(router *gin.Engine, sessions *session.Manager,
	engine *aggregation.Engine) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	// KEY: initialize the map, otherwise it panics
	sio.UserConnections = make(map[string]*socket.Socket)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		fmt.Println("An individual just connected!: ", client.Id())

		// Join a room and broadcast the updated roster
		client.On("message", handlers.HandleRoomMessage(sessions, client, (*socketio_types.SocketServer)(sio)))

		// Tell everyone in the room to move to the list view
		client.On("newList", handlers.HandleNewList(sessions, client, (*socketio_types.SocketServer)(sio)))

		// Compute the shared list for this client only
		client.On("generate", handlers.HandleGenerate(sessions, engine, client))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(client, (*socketio_types.SocketServer)(sio)))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}
