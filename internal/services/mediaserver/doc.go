// Package mediaserver implements the library source against the Jellyfin and
// Emby Items API.
//
// The two server flavours share the same item schema but differ in URL prefix
// and auth header: Jellyfin expects Authorization: MediaBrowser Token="...",
// Emby expects X-Emby-Token and an /emby path prefix. Folder names from the
// configuration are resolved to parent item IDs from the server's root items,
// then each folder is listed recursively with DateCreated fields. Virtual
// placeholder items are skipped. Transient HTTP failures retry with backoff;
// exhaustion surfaces as ErrSourceUnavailable.
package mediaserver
