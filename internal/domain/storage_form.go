package domain

import "sort"

// StoredChannel / StoredCategory son la forma plana que acepta el store:
// sin mapas anidados, sólo arrays.
type StoredChannel struct {
	ChannelID string `json:"channelId"`
	ChannelRecord
}

type StoredCategory struct {
	ParentID   string          `json:"parentId"`
	ParentName string          `json:"parentName"`
	Channels   []StoredChannel `json:"channels"`
}

// ToStorageForm aplana el inventario. La salida va ordenada por id para que
// dos escrituras del mismo inventario produzcan el mismo documento.
func ToStorageForm(g GuildScan) []StoredCategory {
	out := make([]StoredCategory, 0, len(g.Categories))
	for pid, cat := range g.Categories {
		sc := StoredCategory{ParentID: pid, ParentName: cat.ParentName, Channels: make([]StoredChannel, 0, len(cat.Channels))}
		for id, rec := range cat.Channels {
			sc.Channels = append(sc.Channels, StoredChannel{ChannelID: id, ChannelRecord: rec})
		}
		sort.Slice(sc.Channels, func(i, j int) bool { return sc.Channels[i].ChannelID < sc.Channels[j].ChannelID })
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParentID < out[j].ParentID })
	return out
}

// FromStorageForm reconstruye el inventario.
//
// known mapea las categorías vivas del guild (id -> nombre). Si es nil se
// confía en lo guardado. Si no, los canales de una categoría que ya no existe
// van a UnknownCategoryID en vez de descartarse, y los nombres se refrescan.
func FromStorageForm(stored []StoredCategory, known map[string]string) GuildScan {
	g := NewGuildScan()
	for _, sc := range stored {
		pid, name := sc.ParentID, sc.ParentName
		if known != nil && pid != UngroupedID && pid != UnknownCategoryID {
			if live, ok := known[pid]; ok {
				name = live
			} else {
				pid, name = UnknownCategoryID, UnknownCategoryName
			}
		}
		if _, ok := g.Categories[pid]; !ok {
			g.Categories[pid] = CategoryInventory{ParentName: name, Channels: map[string]ChannelRecord{}}
		}
		for _, ch := range sc.Channels {
			if ch.ChannelID == "" {
				continue
			}
			g.Categories[pid].Channels[ch.ChannelID] = ch.ChannelRecord
		}
	}
	return g
}
