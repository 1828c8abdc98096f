/*
 * synavm - Coin puzzle solver.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// coins brute-forces the five-coin monument puzzle: find the ordering of
// the five coin values that satisfies a + b*c^2 + d^3 - e == 399.
package main

import "fmt"

const expressionResult = 399

var coinNames = map[int]string{
	2: "red coin",
	3: "corroded coin",
	5: "shiny coin",
	7: "concave coin",
	9: "blue coin",
}

func calcExpression(a, b, c, d, e int) int {
	return a + b*c*c + d*d*d - e
}

// permute calls visit with every permutation of values, in place.
func permute(values []int, k int, visit func([]int)) {
	if k == len(values) {
		visit(values)
		return
	}
	for i := k; i < len(values); i++ {
		values[k], values[i] = values[i], values[k]
		permute(values, k+1, visit)
		values[k], values[i] = values[i], values[k]
	}
}

func main() {
	values := []int{2, 3, 5, 7, 9}
	var answer []int

	permute(values, 0, func(perm []int) {
		if answer != nil {
			return
		}
		if calcExpression(perm[0], perm[1], perm[2], perm[3], perm[4]) == expressionResult {
			answer = append([]int{}, perm...)
		}
	})

	if answer == nil {
		fmt.Println("Sorry, couldn't find an answer")
		return
	}

	fmt.Printf("The answer is: %v. They are\n", answer)
	for _, coin := range answer {
		fmt.Printf("- %s\n", coinNames[coin])
	}
}
