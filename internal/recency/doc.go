// Package recency persists device connection recency in SQLite. The
// arbitration engine records connect and disconnect times as events pass
// through it, and consults MostRecentlyConnected to break ties when more than
// one group can absorb a role after a disconnect.
package recency
