package web

import "net/http"

const usageText = `
Bad request

Usage:
- POST /webhook?token=secret-token
- GET  /webhook/health

Parameters:
- token: The webhook token to authorize the request

Headers:
- X-Extra-Recipients: optional comma-separated addresses added to this request only

Data:
- The request body should be a JSON matching the format of an Uptime Kuma webhook, e.g.

{
  "heartbeat": {
    "monitorID": 1,
    "status": 0,
    "time": "2024-05-01 10:00:00.000",
    "msg": "connect ECONNREFUSED 10.0.0.5:443",
    "important": true,
    "duration": 60,
    "retries": 0,
    "timezone": "Europe/Berlin",
    "timezoneOffset": "+02:00",
    "localDateTime": "2024-05-01 12:00:00"
  },
  "monitor": {
    "id": 1,
    "name": "API",
    "url": "https://api.example.com",
    "type": "http",
    "active": true
  },
  "msg": "[API] [🔴 Down] connect ECONNREFUSED 10.0.0.5:443"
}

- A body whose msg ends with " Testing" is accepted as a test notification.
`

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// badRequest writes msg followed by the usage text.
func badRequest(w http.ResponseWriter, msg string) {
	writeText(w, http.StatusBadRequest, msg+"\n"+usageText)
}

func usage(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusBadRequest, usageText)
}
