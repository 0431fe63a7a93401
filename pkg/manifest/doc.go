// Package manifest loads template and group definitions from JSON, YAML or
// TOML documents into a templates.Builder.
//
// A manifest file is named "<anything>.templates.<ext>" and looks like:
//
//	templates:
//	  welcome:
//	    variants:
//	      - locales: [en]
//	        body: "Hello {{ name }}"
//	      - name: welcome_cs
//	        locales: [cs, sk]
//	        file: welcome.cs.tpl
//	groups:
//	  onboarding:
//	    subject: welcome
//
// Variant files are resolved relative to the manifest that references them.
package manifest
