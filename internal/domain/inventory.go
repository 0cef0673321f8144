package domain

import "sort"

const (
	// UngroupedID agrupa los canales que no cuelgan de ninguna categoría.
	UngroupedID   = "ungrouped"
	UngroupedName = "No category"

	// UnknownCategoryID recibe canales guardados cuya categoría ya no existe.
	UnknownCategoryID   = "unknown"
	UnknownCategoryName = "Unknown category"
)

// ChannelRecord es un canal trackeado dentro del inventario.
// Con Status=true, ArchiveTimestamp = LastMsgTimestamp + expiry.
type ChannelRecord struct {
	ChannelName      string `json:"channelName"`
	ArchiveTimestamp int64  `json:"archiveTimestamp"`
	LastMsgTimestamp int64  `json:"lastMsgTimestamp"`
	MessageID        string `json:"messageId"`
	Status           bool   `json:"status"`
	Archived         bool   `json:"archived,omitempty"`
}

// Notified marca el record como notificado en sentAt. Un record archivado
// no cambia: sólo un scan nuevo lo vuelve a trackear.
func (r ChannelRecord) Notified(messageID string, sentAt, expiry int64) ChannelRecord {
	if r.Archived {
		return r
	}
	r.Status = true
	r.MessageID = messageID
	r.LastMsgTimestamp = sentAt
	r.ArchiveTimestamp = sentAt + expiry
	return r
}

// Expired: notificado y vencido en now.
func (r ChannelRecord) Expired(now int64) bool {
	return r.Status && !r.Archived && r.ArchiveTimestamp <= now
}

type CategoryInventory struct {
	ParentName string                   `json:"parentName"`
	Channels   map[string]ChannelRecord `json:"channels"`
}

// GuildScan es el inventario completo de un guild, por categoría padre.
type GuildScan struct {
	Categories map[string]CategoryInventory `json:"categories"`
}

func NewGuildScan() GuildScan {
	return GuildScan{Categories: map[string]CategoryInventory{}}
}

// Put inserta o reemplaza un canal bajo parentID, creando la categoría si falta.
func (g *GuildScan) Put(parentID, parentName, channelID string, rec ChannelRecord) {
	if g.Categories == nil {
		g.Categories = map[string]CategoryInventory{}
	}
	cat, ok := g.Categories[parentID]
	if !ok {
		cat = CategoryInventory{ParentName: parentName, Channels: map[string]ChannelRecord{}}
	}
	if cat.Channels == nil {
		cat.Channels = map[string]ChannelRecord{}
	}
	cat.Channels[channelID] = rec
	g.Categories[parentID] = cat
}

// Find devuelve el record y la categoría en la que vive.
func (g GuildScan) Find(channelID string) (ChannelRecord, string, bool) {
	for pid, cat := range g.Categories {
		if rec, ok := cat.Channels[channelID]; ok {
			return rec, pid, true
		}
	}
	return ChannelRecord{}, "", false
}

// Remove borra el canal; las categorías que quedan vacías se eliminan.
func (g *GuildScan) Remove(channelID string) bool {
	for pid, cat := range g.Categories {
		if _, ok := cat.Channels[channelID]; ok {
			delete(cat.Channels, channelID)
			if len(cat.Channels) == 0 {
				delete(g.Categories, pid)
			}
			return true
		}
	}
	return false
}

// Update aplica fn sobre un canal existente. false si no está.
func (g *GuildScan) Update(channelID string, fn func(ChannelRecord) ChannelRecord) bool {
	for _, cat := range g.Categories {
		if rec, ok := cat.Channels[channelID]; ok {
			cat.Channels[channelID] = fn(rec)
			return true
		}
	}
	return false
}

// Clone copia profunda; el cache nunca entrega mapas compartidos.
func (g GuildScan) Clone() GuildScan {
	out := GuildScan{Categories: make(map[string]CategoryInventory, len(g.Categories))}
	for pid, cat := range g.Categories {
		chs := make(map[string]ChannelRecord, len(cat.Channels))
		for id, rec := range cat.Channels {
			chs[id] = rec
		}
		out.Categories[pid] = CategoryInventory{ParentName: cat.ParentName, Channels: chs}
	}
	return out
}

func (g GuildScan) Len() int {
	n := 0
	for _, cat := range g.Categories {
		n += len(cat.Channels)
	}
	return n
}

// ChannelRef identifica un canal en reportes y vistas.
type ChannelRef struct {
	ParentID   string
	ParentName string
	ChannelID  string
	Record     ChannelRecord
}

// Flatten lista los canales ordenados por categoría y nombre.
func (g GuildScan) Flatten() []ChannelRef {
	out := make([]ChannelRef, 0, g.Len())
	for pid, cat := range g.Categories {
		for id, rec := range cat.Channels {
			out = append(out, ChannelRef{ParentID: pid, ParentName: cat.ParentName, ChannelID: id, Record: rec})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParentName != out[j].ParentName {
			return out[i].ParentName < out[j].ParentName
		}
		if out[i].Record.ChannelName != out[j].Record.ChannelName {
			return out[i].Record.ChannelName < out[j].Record.ChannelName
		}
		return out[i].ChannelID < out[j].ChannelID
	})
	return out
}
