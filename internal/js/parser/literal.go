// Copyright 2024 The Jsclean Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// canonicalNumber turns source text like "0x7b" or "3.140" into the decimal
// text the rest of the pipeline treats as a NumberLiteral's canonical Value,
// per spec.md §4.2: "Numeric results ... preserve the canonical decimal
// representation". Using apd rather than float64 avoids introducing binary
// floating-point rounding into integers the obfuscator encoded in hex.
func canonicalNumber(raw string) string {
	if len(raw) > 1 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X') {
		n, ok := new(big.Int).SetString(raw[2:], 16)
		if !ok {
			return raw
		}
		coeff := new(apd.BigInt).SetMathBigInt(n)
		return apd.NewWithBigInt(coeff, 0).Text('f')
	}
	d, _, err := apd.NewFromString(raw)
	if err != nil {
		return raw
	}
	return trimDecimal(d)
}

// trimDecimal renders d without a trailing ".0" when it is a whole number,
// matching how the obfuscator itself emits integers.
func trimDecimal(d *apd.Decimal) string {
	s := d.Text('f')
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// unquote strips the surrounding quote characters and resolves the small
// set of escape sequences obfuscated strings actually use.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i == len(body)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '\'', '"':
			b.WriteByte(body[i])
		case 'x':
			if i+2 < len(body) {
				if n, err := strconv.ParseInt(body[i+1:i+3], 16, 32); err == nil {
					b.WriteRune(rune(n))
					i += 2
					continue
				}
			}
			b.WriteByte(body[i])
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
