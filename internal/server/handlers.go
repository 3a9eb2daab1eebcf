// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in play page.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// WebSocketHandler upgrades GET requests to WebSocket connections and hands
// them to the gateway. The display name comes from the "name" query parameter.
func WebSocketHandler(gw *Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		// Pumps are started by the hub; rejection has already closed conn.
		_, _ = gw.Connect(conn, r.URL.Query().Get("name"), r.RemoteAddr)
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(gw *Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		reg := gw.Room().Registry()
		_, _ = fmt.Fprintf(w, "Mini RPG server is running! Players online: %d/%d", reg.Len(), reg.Capacity())
	}
}

// PlayPageHandler serves a minimal browser client that speaks the WebSocket
// protocol: arrow keys or WASD to move, enter to chat.
func PlayPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, playPage); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}

const playPage = `<!DOCTYPE html>
<html>
<head>
    <title>Mini RPG</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        canvas { border: 1px solid #ccc; background-color: #f9f9f9; }
        #chat { border: 1px solid #ccc; height: 150px; width: 900px; padding: 5px; overflow-y: scroll; margin: 10px 0; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>Mini RPG</h1>
    <div>
        <input type="text" id="name" placeholder="Your name" maxlength="20">
        <button onclick="connect()">Join</button>
    </div>
    <div id="status" class="status disconnected">Disconnected</div>
    <canvas id="map" width="900" height="600"></canvas>
    <div id="chat"></div>
    <input type="text" id="chatInput" placeholder="Say something..." maxlength="300" style="width: 600px">

    <script>
        let ws = null;
        let selfId = null;
        let rejected = false;
        let radius = 14;
        const players = new Map();
        const canvas = document.getElementById('map');
        const ctx = canvas.getContext('2d');
        const statusDiv = document.getElementById('status');
        const chatDiv = document.getElementById('chat');
        const chatInput = document.getElementById('chatInput');

        function setStatus(text, connected) {
            statusDiv.textContent = text;
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
        }

        function addChat(from, text) {
            const line = document.createElement('div');
            const who = document.createElement('strong');
            who.textContent = from + ': ';
            line.appendChild(who);
            line.appendChild(document.createTextNode(text));
            chatDiv.appendChild(line);
            chatDiv.scrollTop = chatDiv.scrollHeight;
        }

        function draw() {
            ctx.clearRect(0, 0, canvas.width, canvas.height);
            for (const p of players.values()) {
                ctx.beginPath();
                ctx.arc(p.x, p.y, radius, 0, Math.PI * 2);
                ctx.fillStyle = p.color;
                ctx.fill();
                ctx.lineWidth = p.id === selfId ? 3 : 1;
                ctx.stroke();
                ctx.fillStyle = '#000';
                ctx.fillText(p.name, p.x - radius, p.y - radius - 4);
            }
        }

        const handlers = {
            init_state(s) {
                selfId = s.selfId;
                radius = s.map.playerRadius;
                canvas.width = s.map.width;
                canvas.height = s.map.height;
                players.clear();
                s.players.forEach(p => players.set(p.id, p));
                setStatus('Connected (' + players.size + '/' + s.maxPlayers + ')', true);
            },
            player_joined(p) { players.set(p.id, p); addChat('*', p.name + ' joined'); },
            player_left(p) {
                const gone = players.get(p.id);
                players.delete(p.id);
                if (gone) { addChat('*', gone.name + ' left'); }
            },
            player_moved(m) {
                const p = players.get(m.id);
                if (p) { p.x = m.x; p.y = m.y; }
            },
            chat(c) { addChat(c.from, c.text); },
            server_error(e) { rejected = true; setStatus(e.message, false); },
        };

        function connect() {
            if (ws) { ws.close(); }
            rejected = false;
            const name = document.getElementById('name').value;
            const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            const sock = new WebSocket(proto + location.host + '/ws?name=' + encodeURIComponent(name));
            ws = sock;
            sock.onmessage = ev => {
                const msg = JSON.parse(ev.data);
                const handler = handlers[msg.type];
                if (handler) { handler(msg.payload || {}); draw(); }
            };
            sock.onclose = () => {
                if (ws !== sock) { return; }
                if (!rejected) { setStatus('Disconnected', false); }
                ws = null;
            };
        }

        function send(type, payload) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({ type, payload }));
            }
        }

        const keys = {
            ArrowLeft: [-5, 0], ArrowRight: [5, 0], ArrowUp: [0, -5], ArrowDown: [0, 5],
            a: [-5, 0], d: [5, 0], w: [0, -5], s: [0, 5],
        };

        document.addEventListener('keydown', e => {
            if (document.activeElement === chatInput || document.activeElement.id === 'name') { return; }
            const delta = keys[e.key];
            if (delta) {
                e.preventDefault();
                send('move', { dx: delta[0], dy: delta[1] });
            }
        });

        chatInput.addEventListener('keypress', e => {
            if (e.key === 'Enter' && chatInput.value.trim()) {
                send('chat', { text: chatInput.value });
                chatInput.value = '';
            }
        });
    </script>
</body>
</html>`
