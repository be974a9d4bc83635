package modules

import (
	"github.com/a-h/templ"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
	"github.com/louisbranch/tenantsite/internal/services/web/templates"
)

// Built-in module ids.
const (
	HeroID     = "hero"
	TextID     = "text"
	FeaturesID = "features"
	FAQID      = "faq"
	CTAID      = "cta"
	GalleryID  = "gallery"
	ContactID  = "contact"
	PostsID    = "posts"
)

// Hero renders a headline banner: title, subtitle, image, ctaLabel, ctaHref.
func Hero(props module.Props) templ.Component {
	return section(HeroID, props, func(m *templates.Markup, p module.Props) {
		m.Image("hero-image", p.String("image"), p.String("title"))
		m.Element("h1", "hero-title", p.String("title"))
		m.Element("p", "hero-subtitle", p.String("subtitle"))
		m.Link("button hero-cta", p.String("ctaHref"), p.String("ctaLabel"))
	})
}

// Text renders a titled block of paragraphs. body may be a string or a list.
func Text(props module.Props) templ.Component {
	return section(TextID, props, func(m *templates.Markup, p module.Props) {
		m.Element("h2", "", p.String("title"))
		if body := p.String("body"); body != "" {
			m.Element("p", "", body)
			return
		}
		for _, paragraph := range p.Strings("body") {
			m.Element("p", "", paragraph)
		}
	})
}

// Features renders a grid of items with title and body.
func Features(props module.Props) templ.Component {
	return section(FeaturesID, props, func(m *templates.Markup, p module.Props) {
		m.Element("h2", "", p.String("title"))
		items := p.Items("items")
		if len(items) == 0 {
			return
		}
		m.Raw(`<ul class="features-grid">`)
		for _, item := range items {
			m.Raw("<li>")
			m.Element("h3", "", item.String("title"))
			m.Element("p", "", item.String("body"))
			m.Raw("</li>")
		}
		m.Raw("</ul>")
	})
}

// FAQ renders question and answer pairs as disclosure widgets.
func FAQ(props module.Props) templ.Component {
	return section(FAQID, props, func(m *templates.Markup, p module.Props) {
		m.Element("h2", "", p.String("title"))
		for _, item := range p.Items("items") {
			if item.String("question") == "" {
				continue
			}
			m.Raw("<details>")
			m.Element("summary", "", item.String("question"))
			m.Element("p", "", item.String("answer"))
			m.Raw("</details>")
		}
	})
}

// CTA renders a call-to-action band.
func CTA(props module.Props) templ.Component {
	return section(CTAID, props, func(m *templates.Markup, p module.Props) {
		m.Element("h2", "", p.String("title"))
		m.Element("p", "", p.String("body"))
		m.Link("button", p.String("href"), p.String("label"))
	})
}

// Gallery renders images with src and alt.
func Gallery(props module.Props) templ.Component {
	return section(GalleryID, props, func(m *templates.Markup, p module.Props) {
		m.Element("h2", "", p.String("title"))
		images := p.Items("images")
		if len(images) == 0 {
			return
		}
		m.Raw(`<div class="gallery-grid">`)
		for _, image := range images {
			m.Image("gallery-image", image.String("src"), image.String("alt"))
		}
		m.Raw("</div>")
	})
}

// Contact renders contact details.
func Contact(props module.Props) templ.Component {
	return section(ContactID, props, func(m *templates.Markup, p module.Props) {
		m.Element("h2", "", p.String("title"))
		m.Raw("<address>")
		if email := p.String("email"); email != "" {
			m.Link("contact-email", "mailto:"+email, email)
		}
		if phone := p.String("phone"); phone != "" {
			m.Link("contact-phone", "tel:"+phone, phone)
		}
		m.Element("p", "contact-address", p.String("address"))
		m.Raw("</address>")
	})
}

// Posts renders a list of linked articles.
func Posts(props module.Props) templ.Component {
	return section(PostsID, props, func(m *templates.Markup, p module.Props) {
		m.Element("h2", "", p.String("title"))
		items := p.Items("items")
		if len(items) == 0 {
			return
		}
		m.Raw(`<ul class="posts-list">`)
		for _, item := range items {
			m.Raw("<li>")
			if href := item.String("href"); href != "" {
				m.Link("post-title", href, item.String("title"))
			} else {
				m.Element("h3", "post-title", item.String("title"))
			}
			m.Element("p", "post-excerpt", item.String("excerpt"))
			m.Raw("</li>")
		}
		m.Raw("</ul>")
	})
}
