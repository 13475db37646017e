// Package simplemedia holds the domain types shared by the simple-media
// download service.
//
// A media item is addressed by the server name of the homeserver that owns
// it plus an opaque media id. Content owned by this server is "local" and is
// served straight from a BlobStore; content owned by any other server is
// "remote" and is fetched over federation, cached, and then served.
//
// The HTTP entry point lives in the download package. The mediarepo package
// implements the local-serving and remote-fetch collaborators on top of the
// Repository and BlobStore interfaces declared here.
package simplemedia
