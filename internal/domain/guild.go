package domain

import "time"

// ChannelKind reduce los tipos de canal de la plataforma a lo que nos importa.
type ChannelKind int

const (
	ChannelKindOther ChannelKind = iota
	ChannelKindText
	ChannelKindAnnouncement
	ChannelKindCategory
	ChannelKindVoice
)

// Tracked: sólo los canales "tipo texto" entran al inventario.
func (k ChannelKind) Tracked() bool {
	return k == ChannelKindText || k == ChannelKindAnnouncement
}

// Channel es la vista mínima de un canal que devuelve la plataforma.
type Channel struct {
	ID       string
	GuildID  string
	Name     string
	ParentID string
	Kind     ChannelKind
	// LastActivity en unix seconds; 0 si no se conoce.
	LastActivity int64
}

// SentMessage es lo que devuelve un envío exitoso.
type SentMessage struct {
	ID        string
	Timestamp time.Time
}

// GuildConfig es la configuración persistida por guild.
type GuildConfig struct {
	GuildID            string
	ArchiveCategoryIDs []string
	NotifyChannelID    string
	AutoArchive        bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsArchiveCategory indica si parentID es una categoría de archivo.
func (c GuildConfig) IsArchiveCategory(parentID string) bool {
	for _, id := range c.ArchiveCategoryIDs {
		if id == parentID {
			return true
		}
	}
	return false
}
