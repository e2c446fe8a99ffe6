package server

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const testPageStyle = `
body { font-family: Arial, sans-serif; margin: 20px; }
#messages { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; background-color: #f9f9f9; }
input[type="text"] { width: 200px; padding: 5px; margin-right: 10px; }
button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
button:hover { background-color: #005a87; }
.status { margin: 10px 0; padding: 5px; border-radius: 3px; }
.connected { background-color: #d4edda; color: #155724; }
.disconnected { background-color: #f8d7da; color: #721c24; }
#users { color: #555; }
`

const testPageScript = `
let ws = null;
let nextAck = 1;
const $ = (id) => document.getElementById(id);

function addLine(html, color) {
  const el = document.createElement('div');
  el.style.margin = '4px 0';
  el.style.color = color || 'black';
  el.innerHTML = html;
  $('messages').appendChild(el);
  $('messages').scrollTop = $('messages').scrollHeight;
}

function escapeHTML(s) {
  const d = document.createElement('div');
  d.textContent = s;
  return d.innerHTML;
}

function setConnected(connected) {
  $('status').textContent = connected ? 'Connected' : 'Disconnected';
  $('status').className = 'status ' + (connected ? 'connected' : 'disconnected');
  $('connectButton').textContent = connected ? 'Leave' : 'Join';
  $('messageInput').disabled = !connected;
  $('sendButton').disabled = !connected;
  $('locationButton').disabled = !connected;
}

function send(event, data) {
  const frame = { event: event, ack: nextAck++, data: data };
  ws.send(JSON.stringify(frame));
}

function join() {
  const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  ws = new WebSocket(scheme + location.host + '/ws');
  ws.onopen = () => {
    setConnected(true);
    send('join', { username: $('username').value, room: $('room').value });
  };
  ws.onmessage = (e) => {
    const frame = JSON.parse(e.data);
    const time = (ms) => new Date(ms).toLocaleTimeString();
    switch (frame.event) {
    case 'message':
      addLine('<strong>' + escapeHTML(frame.data.username) + '</strong> ' + time(frame.data.createdAt) + ': ' + escapeHTML(frame.data.text));
      break;
    case 'locationMessage':
      addLine('<strong>' + escapeHTML(frame.data.username) + '</strong> ' + time(frame.data.createdAt) + ': <a target="_blank" href="' + escapeHTML(frame.data.url) + '">My current location</a>');
      break;
    case 'roomData':
      $('users').textContent = frame.data.room + ': ' + frame.data.users.map((u) => u.username).join(', ');
      break;
    case 'ack':
      if (frame.error) addLine(escapeHTML(frame.error), 'red');
      break;
    }
  };
  ws.onclose = () => { setConnected(false); ws = null; };
}

function toggle() {
  if (ws && ws.readyState === WebSocket.OPEN) { ws.close(); } else { join(); }
}

function sendMessage() {
  const text = $('messageInput').value;
  if (!text.trim() || !ws) return;
  send('sendMessage', text);
  $('messageInput').value = '';
}

function sendLocation() {
  if (!navigator.geolocation) { addLine('Geolocation is not supported by your browser.', 'red'); return; }
  navigator.geolocation.getCurrentPosition((pos) => {
    send('sendLocation', { latitude: pos.coords.latitude, longitude: pos.coords.longitude });
  });
}

$('messageInput').addEventListener('keypress', (e) => { if (e.key === 'Enter') sendMessage(); });
`

// testPage renders the manual test client.
func testPage() g.Node {
	return h.Doctype(
		h.HTML(
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.TitleEl(g.Text("Roomchat Test")),
				h.StyleEl(g.Raw(testPageStyle)),
			),
			h.Body(
				h.H1(g.Text("Roomchat Test")),
				h.Div(h.ID("status"), h.Class("status disconnected"), g.Text("Disconnected")),
				h.Div(
					h.Input(h.Type("text"), h.ID("username"), h.Placeholder("Username")),
					h.Input(h.Type("text"), h.ID("room"), h.Placeholder("Room")),
					h.Button(h.ID("connectButton"), g.Attr("onclick", "toggle()"), g.Text("Join")),
				),
				h.Div(h.ID("users")),
				h.Div(h.ID("messages")),
				h.Div(
					h.Input(h.Type("text"), h.ID("messageInput"), h.Placeholder("Type a message..."), h.Disabled()),
					h.Button(h.ID("sendButton"), g.Attr("onclick", "sendMessage()"), h.Disabled(), g.Text("Send")),
					h.Button(h.ID("locationButton"), g.Attr("onclick", "sendLocation()"), h.Disabled(), g.Text("Send location")),
				),
				h.Script(g.Raw(testPageScript)),
			),
		),
	)
}
