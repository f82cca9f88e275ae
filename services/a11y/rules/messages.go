// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"fmt"
	"strings"
)

func displayName(name string) string {
	if name == "" {
		return "this element"
	}
	return name
}

func nonInteractiveHandlerMessage(name, pattern string, handlers []string) string {
	name = displayName(name)
	attrs := strings.Join(handlers, ", ")
	return fmt.Sprintf(`%s sets %s, but browsers cannot tell that it is interactive and some users will not be able to operate it. Fix it in one of these ways:
 - If %s is an interactive element such as input, button or a, rename it so that it signals that
   - Swap in or rename to a component matching %q
 - If an interactive parent or child exists, set %s on that element directly
 - If no interactive parent or child exists, add one to the markup first and then decide where %s belongs
 - If %s only catches events bubbling up from interactive children, add role="presentation"`,
		name, attrs, name, pattern, attrs, attrs, attrs)
}

func noInteractiveDescendantMessage(name, pattern string, handlers []string) string {
	name = displayName(name)
	return fmt.Sprintf(`%s has role="presentation" but no interactive child such as input, button or a was found, so browsers cannot interpret it and some users will not be able to operate it. Fix it in one of these ways:
 - If interactive children do exist, rename them
   - Swap in or rename every interactive child to a component matching %q
 - If %s is itself interactive, remove role="presentation" and rename it
   - Rename %s so that it matches %q
 - If %s can all move onto interactive children, move them there and remove role="presentation"`,
		name, pattern, name, name, pattern, strings.Join(handlers, ", "))
}

func interactiveHasRolePresentationMessage(name, pattern string) string {
	name = displayName(name)
	return fmt.Sprintf(`%s is an interactive element such as input, button or a, but it has role="presentation", so browsers cannot interpret it and some users will not be able to operate it. Fix it in one of these ways:
 - Remove role="presentation"
 - Rename %s so that it no longer matches %q`,
		name, name, pattern)
}

const headingMessage = `The range (outline) that this smarthr-ui/Heading belongs to is ambiguous.
 - Wrap the Heading and its content in smarthr-ui Article, Aside, Nav or Section so the range it heads is explicit.
 - If the outline is expressed with as="section" or similar, wrap that element in smarthr-ui/SectioningFragment.
  - Heading levels inside it are then computed automatically.`

const rootHeadingMessage = headingMessage + `
 - If this should be the h1 (the feature or page name, the most important heading on the page), use smarthr-ui/PageHeading. PageHeading needs no sectioning wrapper.`

const duplicatePageHeadingMessage = `smarthr-ui/PageHeading appears more than once in this file. PageHeading renders an h1, so use it only for the most important heading.`

const pageHeadingInSectionMessage = `Do not wrap smarthr-ui/PageHeading in smarthr-ui Article, Aside, Nav or Section. Inside them it is no longer the heading of the whole page.`

const redundantTagMessage = `Remove the tag attribute and let smarthr-ui Article, Aside, Nav, Section or SectioningFragment compute the heading level.
 - A fixed tag can pin the heading to an unintended level.`

func bareTagMessage(tag string, withExample bool) string {
	component := capitalize(tag)
	msg := fmt.Sprintf(`Do not use "%s"; extend smarthr-ui/%s instead so heading levels are computed automatically.`, tag, component)
	if withExample {
		msg += fmt.Sprintf(` (e.g. "styled.%s" -> "styled(%s)")`, tag, component)
	}
	return msg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

const unexpectedSectioningTemplate = `{{extended}} is named as if it extends smarthr-ui/{{expected}}
 - If its children contain no Heading, remove "{{expected}}" from the name
 - If its children contain a Heading and it marks the range of an outline, extend smarthr-ui/{{expected}}
   - For "styled(Xxxx)", end the name of the Xxxx component with "{{expected}}" and use smarthr-ui/{{expected}} inside it`
