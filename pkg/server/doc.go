// Package server exposes a live scene over HTTP.
//
// Every handler goes through a [save.Scheduler]: edits run under its
// exclusive lock and save requests land in its single pending slot, so a
// burst of POST /save calls results in one pass that writes only the most
// recent location.
//
//	POST   /save                          {"location": "..."}  -> 202 {"id": "..."}
//	GET    /levels                        per-level entity counts
//	POST   /levels/{level}/vertices       {"x","y","z","name"} -> 201 {"id": n}
//	POST   /levels/{level}/lanes          {"start","end","bidirectional"}
//	DELETE /levels/{level}/vertices/{id}  despawns the vertex and its lanes, walls and measurements
//	GET    /healthz
package server
