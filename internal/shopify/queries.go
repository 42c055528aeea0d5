package shopify

// GraphQL documents for the Storefront cart operations. Every operation
// that returns a cart selects the same fields so responses can replace
// local state wholesale.

const cartFields = `
  id
  checkoutUrl
  createdAt
  updatedAt
  completedAt
  lines(first: 10) {
    edges {
      node {
        id
        quantity
        merchandise {
          __typename
          ... on ProductVariant {
            id
            product {
              id
              productType
              title
              vendor
              variants(first: 10) {
                edges {
                  node {
                    id
                    title
                    sku
                  }
                }
              }
            }
          }
        }
        sellingPlanAllocation {
          sellingPlan {
            id
            name
          }
          priceAdjustments {
            price {
              amount
            }
            compareAtPrice {
              amount
            }
            perDeliveryPrice {
              amount
            }
          }
        }
      }
    }
  }
  estimatedCost {
    totalAmount {
      amount
      currencyCode
    }
    subtotalAmount {
      amount
      currencyCode
    }
    totalTaxAmount {
      amount
      currencyCode
    }
    totalDutyAmount {
      amount
      currencyCode
    }
  }
  buyerIdentity {
    email
    phone
    customer {
      id
    }
    countryCode
  }
`

const queryCartCreate = `
mutation cartCreate {
  cartCreate {
    cart {` + cartFields + `}
    userErrors {
      code
      field
      message
    }
  }
}`

const queryFetchCart = `
query fetchCart($id: ID!) {
  cart(id: $id) {` + cartFields + `}
}`

const queryCartLinesAdd = `
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart {` + cartFields + `}
    userErrors {
      code
      field
      message
    }
  }
}`

const queryCartLinesUpdate = `
mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart {` + cartFields + `}
    userErrors {
      code
      field
      message
    }
  }
}`

const queryCartLinesRemove = `
mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart {` + cartFields + `}
    userErrors {
      code
      field
      message
    }
  }
}`
