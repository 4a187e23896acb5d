// Package sessions holds in-memory calculator sessions for the HTTP API.
//
// Each session owns one calculator.Controller. Access goes through Store.Do,
// which serializes calls per session, since a Controller is single-owner.
// Idle sessions are expired by Sweep, which a Sweeper runs on a cron
// schedule. Nothing is persisted; a restart drops every session.
package sessions
