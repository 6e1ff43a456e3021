package fetch

const bribesQuery = `
query bribes($from: Int!, $to: Int!, $first: Int!, $skip: Int!) {
  voteBribes(first: $first, skip: $skip, where: { timestamp_gte: $from, timestamp_lt: $to }) {
    id
    token { id }
    legacyPool { id }
    clPool { id }
    amount
  }
}`

const clPoolDayDataQuery = `
query clPoolDayData($startOfDay: Int!, $first: Int!, $skip: Int!) {
  clPoolDayDatas(first: $first, skip: $skip, where: { startOfDay: $startOfDay, feesUSD_gt: 0 }) {
    pool { gauge { id } gaugeV2 { id } }
    feesUSD
  }
}`

const legacyPoolDayDataQuery = `
query legacyPoolDayData($startOfDay: Int!, $first: Int!, $skip: Int!) {
  legacyPoolDayDatas(first: $first, skip: $skip, where: { startOfDay: $startOfDay, feesUSD_gt: 0 }) {
    pool { gauge { id } gaugeV2 { id } }
    feesUSD
  }
}`

const aliveGaugesQuery = `
query gauges($block: Int!, $first: Int!, $skip: Int!) {
  gauges(block: { number: $block }, first: $first, skip: $skip, where: { isAlive: true }) {
    id
    isAlive
  }
}`

const tokenPricesQuery = `
query tokens($block: Int!, $ids: [ID!]!, $first: Int!, $skip: Int!) {
  tokens(block: { number: $block }, first: $first, skip: $skip, where: { priceUSD_gt: 0, id_in: $ids }) {
    id
    priceUSD
  }
}`

const daySummaryQuery = `
query protocolDayData($startOfDay: Int!) {
  clProtocolDayDatas(where: { startOfDay: $startOfDay }) {
    startOfDay
    volumeUSD
    feesUSD
  }
  legacyProtocolDayDatas(where: { startOfDay: $startOfDay }) {
    startOfDay
    volumeUSD
    feesUSD
  }
}`
