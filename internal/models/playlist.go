package models

import (
	"encoding/json"
	"errors"
)

// MasterPlaylist is the convergence state of a container's master playlist file:
// PlaylistSynced, PlaylistSyncing or PlaylistWritingToFile. Versions only ever grow.
type MasterPlaylist interface {
	PlaylistVersion() int64
	isMasterPlaylist()
}

// PlaylistSynced is the published state.
type PlaylistSynced struct {
	Version  int64  `json:"version"`
	Filename string `json:"filename"`
}

// PlaylistSyncing means Filename has been written and is being promoted to the published location.
type PlaylistSyncing struct {
	Version       int64    `json:"version"`
	Filename      string   `json:"filename"`
	FilesToDelete []string `json:"filesToDelete"`
	DirsToDelete  []string `json:"dirsToDelete"`
}

// PlaylistWritingToFile means a new playlist file is being generated.
type PlaylistWritingToFile struct {
	Version       int64    `json:"version"`
	FilesToDelete []string `json:"filesToDelete"`
	DirsToDelete  []string `json:"dirsToDelete"`
}

func (p PlaylistSynced) PlaylistVersion() int64        { return p.Version }
func (p PlaylistSyncing) PlaylistVersion() int64       { return p.Version }
func (p PlaylistWritingToFile) PlaylistVersion() int64 { return p.Version }

func (PlaylistSynced) isMasterPlaylist()        {}
func (PlaylistSyncing) isMasterPlaylist()       {}
func (PlaylistWritingToFile) isMasterPlaylist() {}

type playlistJSON struct {
	Synced        *PlaylistSynced        `json:"synced,omitempty"`
	Syncing       *PlaylistSyncing       `json:"syncing,omitempty"`
	WritingToFile *PlaylistWritingToFile `json:"writingToFile,omitempty"`
}

func marshalPlaylist(p MasterPlaylist) playlistJSON {
	var out playlistJSON
	switch v := p.(type) {
	case PlaylistSynced:
		out.Synced = &v
	case PlaylistSyncing:
		out.Syncing = &v
	case PlaylistWritingToFile:
		out.WritingToFile = &v
	}
	return out
}

func (p playlistJSON) state() (MasterPlaylist, error) {
	switch {
	case p.Synced != nil && p.Syncing == nil && p.WritingToFile == nil:
		return *p.Synced, nil
	case p.Syncing != nil && p.Synced == nil && p.WritingToFile == nil:
		return *p.Syncing, nil
	case p.WritingToFile != nil && p.Synced == nil && p.Syncing == nil:
		return *p.WritingToFile, nil
	}
	return nil, errors.New("master playlist must be exactly one of synced, syncing or writingToFile")
}

// EncodePlaylist is the JSON form of a playlist state, keyed by state name.
func EncodePlaylist(p MasterPlaylist) ([]byte, error) {
	return json.Marshal(marshalPlaylist(p))
}

func DecodePlaylist(data []byte) (MasterPlaylist, error) {
	var raw playlistJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw.state()
}
