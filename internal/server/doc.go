// Package server implements the HTTP and WebSocket front of the Mini RPG room.
//
// A Gateway admits each upgraded connection into the room, a Client runs the
// read and write pumps for it, and the Hub fans events out to every attached
// client. Room state itself lives in package room; this package only moves
// bytes and decides who receives them.
package server
