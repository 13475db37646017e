package simplemedia

import "path"

// LocalMediaKey returns the blob key for local media, sharded by the first
// four characters of the media id.
func LocalMediaKey(mediaID string) string {
	return path.Join("local_content", shard(mediaID))
}

// RemoteMediaKey returns the blob key for cached remote media.
func RemoteMediaKey(serverName, filesystemID string) string {
	return path.Join("remote_content", serverName, shard(filesystemID))
}

func shard(id string) string {
	if len(id) <= 4 {
		return id
	}
	return path.Join(id[0:2], id[2:4], id[4:])
}
