package view

import "strings"

// NavItem is one entry of the public or admin navigation.
type NavItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

type navIcon struct {
	Key string
	SVG string
}

var (
	publicNav = []NavItem{
		{Key: "home", Label: "Home", Path: "/"},
		{Key: "about", Label: "About", Path: "/about"},
		{Key: "services", Label: "Services", Path: "/services"},
		{Key: "product", Label: "Products", Path: "/products"},
		{Key: "companies", Label: "Companies", Path: "/companies"},
		{Key: "social-services", Label: "Social Services", Path: "/social-services"},
		{Key: "contact", Label: "Contact", Path: "/contact"},
	}

	adminNav = []NavItem{
		{Key: "dashboard", Label: "Dashboard", Path: "/admin/dashboard"},
		{Key: "home", Label: "Home", Path: "/admin/home"},
		{Key: "about", Label: "About", Path: "/admin/about"},
		{Key: "services", Label: "Services", Path: "/admin/services"},
		{Key: "product", Label: "Products", Path: "/admin/products"},
		{Key: "companies", Label: "Companies", Path: "/admin/companies"},
		{Key: "social-services", Label: "Social Services", Path: "/admin/social-services"},
		{Key: "contact", Label: "Contact", Path: "/admin/contact"},
		{Key: "submissions", Label: "Contact Submissions", Path: "/admin/contact-submissions"},
	}

	navIcons = []navIcon{
		{Key: "dashboard", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M3.75 6A2.25 2.25 0 0 1 6 3.75h2.25A2.25 2.25 0 0 1 10.5 6v2.25a2.25 2.25 0 0 1-2.25 2.25H6a2.25 2.25 0 0 1-2.25-2.25V6Zm0 9.75A2.25 2.25 0 0 1 6 13.5h2.25a2.25 2.25 0 0 1 2.25 2.25V18a2.25 2.25 0 0 1-2.25 2.25H6A2.25 2.25 0 0 1 3.75 18v-2.25ZM13.5 6a2.25 2.25 0 0 1 2.25-2.25H18A2.25 2.25 0 0 1 20.25 6v2.25A2.25 2.25 0 0 1 18 10.5h-2.25a2.25 2.25 0 0 1-2.25-2.25V6Zm0 9.75a2.25 2.25 0 0 1 2.25-2.25H18a2.25 2.25 0 0 1 2.25 2.25V18A2.25 2.25 0 0 1 18 20.25h-2.25A2.25 2.25 0 0 1 13.5 18v-2.25Z"/></svg>`},
		{Key: "home", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="m2.25 12 8.954-8.955a1.126 1.126 0 0 1 1.591 0L21.75 12M4.5 9.75v10.125c0 .621.504 1.125 1.125 1.125H9.75v-4.875c0-.621.504-1.125 1.125-1.125h2.25c.621 0 1.125.504 1.125 1.125V21h4.125c.621 0 1.125-.504 1.125-1.125V9.75M8.25 21h8.25"/></svg>`},
		{Key: "about", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M15.75 6a3.75 3.75 0 1 1-7.5 0 3.75 3.75 0 0 1 7.5 0ZM4.501 20.118a7.5 7.5 0 0 1 14.998 0A17.933 17.933 0 0 1 12 21.75c-2.676 0-5.216-.584-7.499-1.632Z"/></svg>`},
		{Key: "services", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M21 8.25c0-2.485-2.099-4.5-4.688-4.5-1.935 0-3.597 1.126-4.312 2.733-.715-1.607-2.377-2.733-4.313-2.733C5.1 3.75 3 5.765 3 8.25c0 7.22 9 12 9 12s9-4.78 9-12Z"/></svg>`},
		{Key: "product", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="m20.25 7.5-.625 10.632a2.25 2.25 0 0 1-2.247 2.118H6.622a2.25 2.25 0 0 1-2.247-2.118L3.75 7.5M10 11.25h4M3.375 7.5h17.25c.621 0 1.125-.504 1.125-1.125v-1.5c0-.621-.504-1.125-1.125-1.125H3.375c-.621 0-1.125.504-1.125 1.125v1.5c0 .621.504 1.125 1.125 1.125Z"/></svg>`},
		{Key: "companies", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M3.75 21h16.5M4.5 3h15M5.25 3v18m13.5-18v18M9 6.75h1.5m-1.5 3h1.5m-1.5 3h1.5m3-6H15m-1.5 3H15m-1.5 3H15M9 21v-3.375c0-.621.504-1.125 1.125-1.125h3.75c.621 0 1.125.504 1.125 1.125V21"/></svg>`},
		{Key: "social-services", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M18 18.72a9.094 9.094 0 0 0 3.741-.479 3 3 0 0 0-4.682-2.72m.94 3.198.001.031c0 .225-.012.447-.037.666A11.944 11.944 0 0 1 12 21c-2.17 0-4.207-.576-5.963-1.584A6.062 6.062 0 0 1 6 18.719m12 0a5.971 5.971 0 0 0-.941-3.197m0 0A5.995 5.995 0 0 0 12 12.75a5.995 5.995 0 0 0-5.058 2.772m0 0a3 3 0 0 0-4.681 2.72 8.986 8.986 0 0 0 3.74.477m.94-3.197a5.971 5.971 0 0 0-.94 3.197M15 6.75a3 3 0 1 1-6 0 3 3 0 0 1 6 0Z"/></svg>`},
		{Key: "contact", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M21.75 6.75v10.5a2.25 2.25 0 0 1-2.25 2.25h-15A2.25 2.25 0 0 1 2.25 17.25V6.75M21.75 6.75A2.25 2.25 0 0 0 19.5 4.5h-15A2.25 2.25 0 0 0 2.25 6.75v.243c0 .781.405 1.506 1.071 1.916l7.5 4.615a2.25 2.25 0 0 0 2.157 0l7.5-4.615a2.25 2.25 0 0 0 1.072-1.916V6.75"/></svg>`},
		{Key: "submissions", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M2.25 13.5h3.86a2.25 2.25 0 0 1 2.012 1.244l.256.512a2.25 2.25 0 0 0 2.013 1.244h3.218a2.25 2.25 0 0 0 2.013-1.244l.256-.512a2.25 2.25 0 0 1 2.013-1.244h3.859M2.25 13.5V18a2.25 2.25 0 0 0 2.25 2.25h15A2.25 2.25 0 0 0 21.75 18v-4.5M2.25 13.5l2.015-7.053A2.25 2.25 0 0 1 6.43 4.875h11.14a2.25 2.25 0 0 1 2.165 1.572L21.75 13.5"/></svg>`},
	}
	defaultNavIcon = navIcon{Key: "default", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M3.75 9h16.5m-16.5 6.75h16.5"/></svg>`}
	navIconLookup  = func() map[string]navIcon {
		lookup := make(map[string]navIcon, len(navIcons)+1)
		for _, icon := range navIcons {
			lookup[icon.Key] = icon
		}
		lookup[defaultNavIcon.Key] = defaultNavIcon
		return lookup
	}()
)

// PublicNav returns the site menu in display order.
func PublicNav() []NavItem {
	return append([]NavItem(nil), publicNav...)
}

// AdminNav returns the admin sidebar in display order.
func AdminNav() []NavItem {
	return append([]NavItem(nil), adminNav...)
}

// ActiveKey resolves the nav key whose path matches the request path.
func ActiveKey(items []NavItem, path string) string {
	best := ""
	bestLen := -1
	for _, item := range items {
		if path == item.Path || (item.Path != "/" && strings.HasPrefix(path, item.Path+"/")) {
			if len(item.Path) > bestLen {
				best, bestLen = item.Key, len(item.Path)
			}
		}
	}
	if best == "" && (path == "/home" || path == "/") {
		return "home"
	}
	return best
}

// NavIconSVG resolves the SVG string for a nav key, falling back to the default icon.
func NavIconSVG(key string) string {
	trimmed := strings.ToLower(strings.TrimSpace(key))
	if icon, ok := navIconLookup[trimmed]; ok {
		return icon.SVG
	}
	return defaultNavIcon.SVG
}
