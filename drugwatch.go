// Package drugwatch tracks recent regulatory drug approvals. It searches the
// web for approval announcements, fetches and normalizes the linked documents
// (HTML or PDF), and turns their text into structured approval records using
// a generative model.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., gemini/, goquery/, serpapi/).
package drugwatch
