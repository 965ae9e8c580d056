package provider

import (
	"context"

	"gamedex/internal/imagecache"
	"gamedex/internal/sourcedata"
)

var userImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"}

// UserSource surfaces hand-picked cover art: any image dropped into the
// user subdirectory of the image cache under the game's title becomes the
// top-priority cover. It never touches the network.
type UserSource struct {
	images *imagecache.Store
}

// NewUserSource builds the user-override provider.
func NewUserSource(images *imagecache.Store) *UserSource {
	return &UserSource{images: images}
}

func (p *UserSource) Type() string { return sourcedata.TypeUser }

func (p *UserSource) GetData(_ context.Context, gameTitle string, _ bool) (sourcedata.Item, error) {
	for _, ext := range userImageExtensions {
		path := p.images.PathFor(sourcedata.TypeUser, gameTitle, ext)
		if imagecache.Exists(path) {
			return &sourcedata.User{
				Source: gameTitle,
				Cover:  &sourcedata.ImageRef{LocalPath: path},
			}, nil
		}
	}
	return nil, nil
}
