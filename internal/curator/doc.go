// Package curator renders metadata drafts into per-marketplace renditions,
// applying each marketplace's title, description, and keyword rules. Items
// whose keyword set falls below a marketplace minimum after curation are
// routed to manual review with the renditions preserved.
package curator
