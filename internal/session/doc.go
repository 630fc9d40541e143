// Package session owns one run of tasker: it loads the task file into a
// store, keeps it saved in the background, and writes it one last time on
// shutdown.
//
// The lifecycle is:
//
//	s, err := session.Open(cfg, session.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer s.Close() // stops autosave, waits for it, then saves
//
//	if err := s.LoadErr(); err != nil {
//	    // The file was unreadable; the store starts empty.
//	}
//
// Front ends (the text menu and the full-screen view) mutate tasks through
// the Session rather than the store directly, so every change is published
// on the event bus and logged.
package session
